// Package main is the entry point of the student dashboard CLI.
//
// Every subcommand first restores the session persisted by a previous run,
// then acts on it:
//
//	dashboard login -email E        exchange credentials for a session
//	dashboard register -email E     create an account and log in
//	dashboard logout                forget the session
//	dashboard whoami                show the current user and token expiry
//	dashboard show [-json]          load and print the dashboard
//	dashboard compare               print the alumni benchmark
//	dashboard serve                 serve the dashboard view over HTTP
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errReported means the command already printed its failure.
var errReported = errors.New("reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		}
		os.Exit(1)
	}
}

// run dispatches one subcommand.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errReported
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		if name == "-h" || name == "-help" || name == "help" {
			usage(stdout)
			return nil
		}
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr)
		return errReported
	}

	streams := cmdIO{stdin: stdin, stdout: stdout, stderr: stderr}
	opts, err := cmd.parse(rest, streams)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, name, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	// A rejected token is discarded here; the command then sees a logged-out session.
	a.manager.Restore(ctx)

	return cmd.run(ctx, a, opts, streams)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage: dashboard <command> [flags]

Commands:
  login -email E            log in (password is prompted)
  register -email E [-role] create an account and log in
  logout                    forget the current session
  whoami                    show the logged-in user
  show [-json]              load and print the dashboard
  compare                   print the alumni benchmark
  serve                     serve the dashboard view over HTTP

Version: %s
`, version)
}
