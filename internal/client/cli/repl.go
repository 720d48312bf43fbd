package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Mkdir(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error

	Upload(ctx context.Context, args []string) error
	Uploads(ctx context.Context) error
	CancelUpload(ctx context.Context, args []string) error
	RetryUpload(ctx context.Context, args []string) error
	ClearUploads(ctx context.Context) error

	Share(ctx context.Context, args []string) error
	Versions(ctx context.Context, args []string) error
	Activity(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Omnisent CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                     — show available commands
//	  - login                    — authenticate
//	  - exit | quit              — leave the program
//
//	Logged in:
//	  - help                     — show available commands
//	  - whoami                   — show the current user and role limits
//	  - ls [path] [category]     — list files, optionally filtered by category
//	  - search <term>            — search files by name
//	  - mkdir <name> [parent]    — create a folder
//	  - rename <id> <name>       — rename a file or folder
//	  - move <id> <parent>       — move a file or folder
//	  - rm <id>                  — delete a file or folder
//	  - upload <path> ...        — enqueue one or more file transfers
//	  - uploads                  — show the upload queue
//	  - cancel <task-id>         — abort an in-flight transfer
//	  - retry <task-id>          — re-enqueue a failed or cancelled transfer
//	  - clear                    — drop finished transfers from the queue
//	  - share <id>               — create a share link
//	  - versions <id>            — show version history
//	  - activity <id>            — show the activity log
//	  - stats                    — show storage usage
//	  - logout                   — log out
//	  - exit | quit              — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("omni %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, ls, search, mkdir, rename, move, rm, upload, uploads, cancel, retry, clear, share, versions, activity, stats, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "l", "ls", "list":
			_ = a.List(ctx, args)

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <term>")
				continue
			}
			_ = a.Search(ctx, args)

		case "mkdir":
			if len(args) == 0 {
				printlnFn("Usage: mkdir <name> [parent-id]")
				continue
			}
			_ = a.Mkdir(ctx, args)

		case "rename":
			if len(args) < 2 {
				printlnFn("Usage: rename <id> <new-name>")
				continue
			}
			_ = a.Rename(ctx, args)

		case "move":
			if len(args) < 2 {
				printlnFn("Usage: move <id> <parent-id>")
				continue
			}
			_ = a.Move(ctx, args)

		case "rm":
			if len(args) == 0 {
				printlnFn("Usage: rm <id>")
				continue
			}
			_ = a.Remove(ctx, args)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <path> ...")
				continue
			}
			_ = a.Upload(ctx, args)

		case "uploads":
			_ = a.Uploads(ctx)

		case "cancel":
			if len(args) == 0 {
				printlnFn("Usage: cancel <task-id>")
				continue
			}
			_ = a.CancelUpload(ctx, args)

		case "retry":
			if len(args) == 0 {
				printlnFn("Usage: retry <task-id>")
				continue
			}
			_ = a.RetryUpload(ctx, args)

		case "clear":
			_ = a.ClearUploads(ctx)

		case "share":
			if len(args) == 0 {
				printlnFn("Usage: share <id>")
				continue
			}
			_ = a.Share(ctx, args)

		case "versions":
			if len(args) == 0 {
				printlnFn("Usage: versions <id>")
				continue
			}
			_ = a.Versions(ctx, args)

		case "activity":
			if len(args) == 0 {
				printlnFn("Usage: activity <id>")
				continue
			}
			_ = a.Activity(ctx, args)

		case "stats":
			_ = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
