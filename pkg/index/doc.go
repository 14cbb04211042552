// Copyright © 2018 One Concern

/*
Package index maintains the persistent index of a vault.

The index is an embedded SQLite database with three tables:

  settings: name/value pairs, holding the schema version and the digest scheme of the vault
  entries:  one row per ingested file, (digest, name), both unique
  tags:     free-form (digest, name, value) annotations, append-only

The schema version is read once when the index is opened. Upgrade steps are registered
per source version and applied in sequence up to LatestVersion.
A failed step is not rolled back: the index is then left in an undefined state that
needs manual cleanup.
*/
package index
