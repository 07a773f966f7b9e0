// Package auth manages the Google OAuth credential lifecycle for calagent.
//
// It covers three concerns:
//
//   - Store: durable load/save of the single access/refresh token record,
//     persisted as JSON with an epoch-millisecond expiry.
//   - Flow: the one-time interactive authorization-code grant, served by a
//     single-use local HTTP callback listener on a fixed port.
//   - Manager: returns a valid, non-expired Handle, refreshing the access
//     token or re-running the grant as needed. A still-valid stored
//     credential is returned without any network I/O.
//
// The durable record assumes a single writer. Two processes refreshing
// concurrently can rotate the refresh token out from under each other; the
// package does not lock against that.
package auth
