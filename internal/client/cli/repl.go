package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// runREPL reads one line at a time and runs it through a fresh command
// tree. It returns on EOF or on exit/quit.
func runREPL(ctx context.Context, a *App) {
	for {
		fmt.Fprintf(a.out, "movieshelf (%s)> ", a.status())
		line, err := a.reader.ReadString('\n')
		if args := strings.Fields(line); len(args) > 0 {
			if a.execute(ctx, args) {
				return
			}
		}
		if err != nil {
			fmt.Fprintln(a.out)
			return
		}
	}
}

// execute runs one command line and reports whether the REPL should stop.
func (a *App) execute(ctx context.Context, args []string) bool {
	root := a.newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil, errors.Is(err, errRefused):
	case errors.Is(err, errExit):
		fmt.Fprintln(a.out, "Bye!")
		return true
	default:
		var ae *actionError
		if errors.As(err, &ae) {
			a.logger.Debug(ctx, "command failed", "action", ae.action, "error", ae.err)
		}
		fmt.Fprintln(a.out, err.Error())
	}
	return false
}
