package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	Top(ctx context.Context, n int) error
	Submit(ctx context.Context, name string, score float64, image string) error
	Revoke(ctx context.Context, name string) error
	Check(ctx context.Context, score float64) error
}

const helpText = `Available commands:
  top [n]                         show the ranking
  submit <name> <score> [image]   register an entry; image is a file path or URL
  revoke <name>                   delete your entry
  check <score>                   would this score enter the ranking?
  exit | quit`

// runREPL reads commands from scanner until EOF, exit or quit. Handler errors
// are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("lb> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "top", "l", "list":
			n := 0
			if len(args) > 0 {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					printlnFn("usage: top [n]")
					continue
				}
				n = v
			}
			_ = a.Top(ctx, n)

		case "submit":
			if len(args) < 2 || len(args) > 3 {
				printlnFn("usage: submit <name> <score> [image]")
				continue
			}
			score, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				printlnFn("score must be a number")
				continue
			}
			image := ""
			if len(args) == 3 {
				image = args[2]
			}
			_ = a.Submit(ctx, args[0], score, image)

		case "revoke", "delete":
			if len(args) != 1 {
				printlnFn("usage: revoke <name>")
				continue
			}
			_ = a.Revoke(ctx, args[0])

		case "check":
			if len(args) != 1 {
				printlnFn("usage: check <score>")
				continue
			}
			score, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				printlnFn("score must be a number")
				continue
			}
			_ = a.Check(ctx, score)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
