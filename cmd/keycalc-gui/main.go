//go:build !tinygo

// Package main is the entry point for the keycalc desktop window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/keycalc/internal/app"
	"github.com/dshills/keycalc/internal/gui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options
	var win gui.Options
	var showVersion bool

	fs := flag.NewFlagSet("keycalc-gui", flag.ExitOnError)
	opts.Bind(fs, true)
	fs.IntVar(&win.Cols, "cols", gui.DefaultCols, "window width in `cells`")
	fs.IntVar(&win.Rows, "rows", gui.DefaultRows, "window height in `cells`")
	fs.BoolVar(&showVersion, "version", false, "print the version and exit")
	_ = fs.Parse(os.Args[1:])

	if showVersion {
		fmt.Printf("keycalc-gui %s\n", version)
		return 0
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "keycalc-gui: %v\n", err)
		return 2
	}
	win.Title = "keycalc " + version

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keycalc-gui: %v\n", err)
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gui.Run(ctx, application, win); err != nil {
		fmt.Fprintf(os.Stderr, "keycalc-gui: %v\n", err)
		return 1
	}
	return 0
}
