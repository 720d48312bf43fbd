// Package cli provides the interactive Omnisent command-line client.
//
// It wires configuration, the local credential store, the REST API client,
// the session manager and the upload queue into an interactive REPL. Typical
// flow: restore a previous session from disk, prompt for credentials when
// needed, arm the auto-logout timer, and execute user commands.
//
// Key features:
//   - Login / Logout / Whoami with automatic logout on token expiry
//   - Browse files and folders (list, search, mkdir, rename, move, rm)
//   - Concurrent uploads with per-task progress, cancel and retry
//   - Share links, version history, activity log and storage stats
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and the session package for details.
package cli
