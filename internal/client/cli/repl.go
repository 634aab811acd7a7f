package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. App
// satisfies it; tests provide a stub.
type execIface interface {
	Share(ctx context.Context, args []string) error
	Scan(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Forget(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
}

const helpText = "Available commands: share [profile.json], scan [text], (l)ist, show <id>, forget <id>, backup, restore <key>, whoami, help, exit"

// runREPL reads lines from scanner and dispatches the first word as the
// command. Handlers report their own errors, so the loop keeps going after a
// failed command. It returns on EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, prompt bool, scanner *bufio.Scanner) {
	for {
		if prompt {
			fmt.Print("factshare> ")
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "share":
			_ = a.Share(ctx, args)

		case "scan":
			_ = a.Scan(ctx, args)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx, args)

		case "forget":
			_ = a.Forget(ctx, args)

		case "backup":
			_ = a.Backup(ctx)

		case "restore":
			_ = a.Restore(ctx, args)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if ctx.Err() != nil {
			return
		}
	}
}
