// Copyright © 2018 One Concern

/*
Package zenodotus provides a content-addressed file vault.

Files added to a vault are moved into a storage area under the name of their cryptographic digest,
and indexed under a unique logical name in an embedded SQLite database. Indexed files may be annotated
with free-form tags, designating them by any unambiguous prefix of their digest.

The CLI is in cmd/zenodotus. Vault operations are in pkg/vault, the index in pkg/index.
*/
package zenodotus
