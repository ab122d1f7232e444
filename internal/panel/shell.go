package panel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

const shellHelp = "Available commands: status, on, off, toggle, keywords [text], id, exit"

// Shell reads panel commands line by line until EOF or exit. Command errors
// are printed and the loop continues.
func (c PanelCmd) Shell(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(c.out, "hlsync settings panel (type 'help' for commands)")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(c.out, "hlsync> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")

		var err error
		switch cmd {
		case "help":
			fmt.Fprintln(c.out, shellHelp)
		case "status":
			err = c.Status(ctx, "")
		case "on":
			err = c.SetEnabled(ctx, true)
		case "off":
			err = c.SetEnabled(ctx, false)
		case "toggle":
			err = c.Toggle(ctx)
		case "keywords":
			if rest == "" {
				err = c.KeywordsGet(ctx, "")
			} else {
				err = c.KeywordsSet(ctx, rest)
			}
		case "id":
			err = c.UserID(ctx, "")
		case "exit", "quit":
			fmt.Fprintln(c.out, "Bye!")
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown command:", cmd)
		}

		if err != nil {
			pterm.Error.Println(err.Error())
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return scanner.Err()
}
