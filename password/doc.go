// Package password hashes and verifies stored credentials.
//
// # Formats
//
// Two encodings are recognised by prefix:
//
//	$argon2id$v=19$m=<kib>,t=<iterations>,p=<threads>$<salt>$<key>
//	$2a$<cost>$<salt+hash>  (also $2b$ and $2y$)
//
// New hashes are produced with the scheme selected in [Config]. Verification
// accepts either format, so a user table that mixes bcrypt rows from an older
// deployment with argon2id rows keeps working. [Hasher.NeedsRehash] reports rows
// that should be upgraded after a successful login.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Log plaintext passwords or hashes.
package password
