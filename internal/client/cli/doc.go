// Package cli provides the interactive candidate portal command-line
// client.
//
// It wires configuration, the local credential store, the HTTP gateway, and
// the session service into a REPL. Typical flow: restore any stored session,
// confirm it against the server, then execute user commands.
//
// Commands:
//   - register — submit the candidate profile
//   - verify   — submit the emailed one-time code
//   - resend   — request a fresh code
//   - login / logout
//   - profile  — fetch and display the candidate record
//   - status   — show the session state without contacting the server
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
