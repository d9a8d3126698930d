// Package principal resolves the identities that tokens are issued to.
//
// A [Store] answers two questions: do these credentials belong to an active
// account ([Store.Verify]), and what does the account look like right now
// ([Store.Load]). Load is called on every refresh so that role changes and
// deactivations take effect without waiting for tokens to expire.
//
// [MemoryStore] serves tests and single-binary demos. [PostgresStore] reads the
// users and roles tables created by the embedded goose migrations ([Migrate]).
//
// Identities are emails: they are trimmed and lower-cased before lookup.
package principal
