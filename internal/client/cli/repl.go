package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it; tests
// use a recording stub.
type execIface interface {
	isLoggedIn() bool
	hasOpenSession() bool

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Settings(ctx context.Context) error

	New(ctx context.Context) error
	List(ctx context.Context) error
	Open(ctx context.Context, ref string) error
	Home(ctx context.Context) error
	History(ctx context.Context) error
	Send(ctx context.Context, text string) error
	Delete(ctx context.Context, ref string) error
	Clear(ctx context.Context) error

	Avatar(ctx context.Context, ref string) error
	Users(ctx context.Context) error
	Export(ctx context.Context, dest string) error
	Import(ctx context.Context, src string) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = "Available commands: new, (l)ist, open <#|id>, home, history, (s)end <text>, " +
		"delete <#|id>, clear, settings, whoami, avatar [ref], logout, exit\n" +
		"Owner commands: avatar <ref>, users, export [path|s3], import <path|s3:key>\n" +
		"With a session open, any line that is not a command is sent as a message."
)

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit", or ctx is cancelled. The first word is the command, the
// rest of the line its argument; with a session open, lines that do not fit
// a command's shape are sent as messages. Handler errors are printed and the
// loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		prompt := "aither> "
		if s := statusFn(); s != "" {
			prompt = fmt.Sprintf("aither (%s)> ", s)
		}
		printlnFn(prompt)

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		if a.isLoggedIn() && a.hasOpenSession() && !isCommand(cmd, arg) {
			report(a.Send(ctx, line))
			continue
		}

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Até logo.")
			return
		}
		if cmd == "help" {
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		}

		if !a.isLoggedIn() {
			if cmd == "login" {
				report(a.Login(ctx))
			} else {
				printlnFn("Unknown command:", cmd, "(type 'login')")
			}
			continue
		}

		switch cmd {
		case "login":
			report(a.Login(ctx))
		case "logout":
			report(a.Logout(ctx))
		case "whoami":
			report(a.WhoAmI(ctx))
		case "settings":
			report(a.Settings(ctx))
		case "new":
			report(a.New(ctx))
		case "l", "list":
			report(a.List(ctx))
		case "open":
			report(a.Open(ctx, arg))
		case "home":
			report(a.Home(ctx))
		case "history":
			report(a.History(ctx))
		case "s", "send":
			report(a.Send(ctx, arg))
		case "delete":
			report(a.Delete(ctx, arg))
		case "clear":
			report(a.Clear(ctx))
		case "avatar":
			report(a.Avatar(ctx, arg))
		case "users":
			report(a.Users(ctx))
		case "export":
			report(a.Export(ctx, arg))
		case "import":
			report(a.Import(ctx, arg))
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// Argument shapes of the commands. While a session is open a line counts as
// a command only when it matches one of them; anything else is a message.
var (
	bareCommands = map[string]bool{
		"exit": true, "quit": true, "help": true, "login": true, "logout": true,
		"whoami": true, "settings": true, "new": true, "l": true, "list": true,
		"home": true, "history": true, "clear": true, "users": true,
		"avatar": true, "export": true,
	}
	oneArgCommands = map[string]bool{
		"open": true, "delete": true, "avatar": true, "export": true, "import": true,
	}
)

func isCommand(cmd, arg string) bool {
	switch {
	case cmd == "s" || cmd == "send":
		return true
	case arg == "":
		return bareCommands[cmd]
	default:
		return oneArgCommands[cmd] && !strings.ContainsAny(arg, " \t")
	}
}

func report(err error) {
	if err != nil && !errors.Is(err, io.EOF) {
		printlnFn("Error:", err)
	}
}
