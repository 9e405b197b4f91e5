package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Calendar(ctx context.Context, month string) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

const helpText = `Available commands:
  list | l              list all entries, newest first
  calendar [YYYY-MM]    month view, days with entries are marked
  show <id>             show one entry
  add                   write today's (or another day's) reflection
  edit <id>             change an entry, empty input keeps a field
  delete <id>           delete an entry
  sync                  reconcile with the remote store
  status                show sync status`

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or "exit"/"quit". Handler errors are already reported
// to the user by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dr %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			printlnFn(helpText)
			if a.isLoggedIn() {
				printlnFn("  logout                forget the remote identity, local entries stay")
			} else {
				printlnFn("  register | login      create or use a remote account")
			}
			printlnFn("  exit | quit           leave the program")

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "calendar", "cal":
			_ = a.Calendar(ctx, arg)

		case "add":
			_ = a.Add(ctx)

		case "show", "edit", "delete", "rm":
			if arg == "" {
				printlnFn(fmt.Sprintf("usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "show":
				_ = a.Show(ctx, arg)
			case "edit":
				_ = a.Edit(ctx, arg)
			default:
				_ = a.Delete(ctx, arg)
			}

		case "sync":
			_ = a.Sync(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
