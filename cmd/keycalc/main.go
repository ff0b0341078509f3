// Command keycalc is the terminal calculator. On a terminal it draws the
// full keypad; with piped input or -plain it reads key sequences line by
// line and prints a one-line readout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/keycalc/internal/app"
	"github.com/dshills/keycalc/internal/renderer/backend"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const usageExamples = `
Examples:
  keycalc                          full-screen calculator
  echo '12+7 enter' | keycalc      evaluate piped keys
  keycalc -plain -log-level debug  line mode with debug logging
`

type cli struct {
	opts        app.Options
	plain       bool
	showVersion bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	c, err := parseArgs(args, stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "keycalc: %v\n", err)
		return 2
	}
	if c.showVersion {
		fmt.Fprintf(stdout, "keycalc %s (commit %s, built %s)\n", version, commit, date)
		return 0
	}

	application, err := app.New(c.opts)
	if err != nil {
		fmt.Fprintf(stderr, "keycalc: %v\n", err)
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.plain || !interactive(stdin) {
		err = application.RunLine(ctx, stdin, stdout)
	} else {
		err = runTerminal(ctx, application)
	}
	if err != nil {
		fmt.Fprintf(stderr, "keycalc: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (cli, error) {
	var c cli
	fs := flag.NewFlagSet("keycalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	c.opts.Bind(fs, true)
	fs.BoolVar(&c.plain, "plain", false, "line mode: read key sequences from stdin")
	fs.BoolVar(&c.showVersion, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "keycalc - keyboard-driven calculator\n\nUsage: keycalc [options]\n\n")
		fs.PrintDefaults()
		fmt.Fprint(fs.Output(), usageExamples)
	}

	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if fs.NArg() > 0 {
		return c, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return c, c.opts.Validate()
}

// interactive reports whether both ends are terminals. Stdout is checked
// too so that redirected output gets the line readout.
func interactive(stdin *os.File) bool {
	return term.IsTerminal(int(stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runTerminal(ctx context.Context, application *app.Application) error {
	terminal, err := backend.NewTerminal(backend.WithTitle("keycalc"))
	if err != nil {
		return err
	}
	return application.RunTerminal(ctx, terminal)
}
