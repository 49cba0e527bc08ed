// Package accounts implements the credential and account-lifecycle core of a
// task-management backend: registration gated by email confirmation, login
// gated on confirmation state, one-time-token password resets, and the
// authenticated profile/password operations.
//
// Account lifecycle:
//   - Accounts are created unconfirmed. Confirmation is a single one-way
//     transition driven by a ConfirmationToken delivered out of band; a valid
//     token flips the account and is consumed in the same transaction.
//   - Password resets reuse the same token mechanism. Tokens expire after a
//     configurable window (10 minutes by default) and multiple live tokens
//     per account may coexist; consuming one leaves the others intact.
//
// Commands:
//   - Every user-facing operation is a Message/Handler pair. Handlers return
//     rich errors (go-errors categories plus text codes) for expected
//     outcomes; only genuinely unexpected faults surface as internal errors.
//
// Notifications:
//   - Email dispatch is best-effort and never gates the primary operation.
//     The NotificationDispatcher runs sends on their own goroutine and logs
//     failures; store writes commit independently of delivery.
package accounts
