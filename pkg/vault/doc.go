// Copyright © 2018 One Concern

/*
Package vault implements a single-user content-addressed file vault.

A vault is a directory holding an index and a storage area:

  <root>/zenodotus.sqlite3   the index (see package index)
  <root>/store/<digest>      one storage slot per ingested file

Ingesting a file runs a strictly sequential pipeline:

  READ_HASH -> DUPLICATE_CHECK -> RECORD -> RELOCATE -> DONE

Any stage may fail, and then no further stage runs. There is no retry.

The index is updated (RECORD) before the file is moved into its slot (RELOCATE).
When relocation fails, the index holds an entry without any file in storage:
this gap is reported, not rolled back. Verify lists such entries.

Concurrent processes working on the same vault are not coordinated.
*/
package vault
