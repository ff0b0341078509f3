// Package main serves a calculator session over the Model Context Protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/keycalc/internal/app"
	"github.com/dshills/keycalc/internal/mcp"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options
	var httpAddr string

	fs := flag.NewFlagSet("keycalc-mcp", flag.ExitOnError)
	opts.Bind(fs, false)
	fs.StringVar(&httpAddr, "http", "", "serve streamable HTTP on `addr` instead of stdio")
	_ = fs.Parse(os.Args[1:])
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "keycalc-mcp: %v\n", err)
		return 2
	}

	// Stdout carries the protocol; logs go to stderr.
	opts.LogStderr = os.Stderr
	opts.NoWatch = true

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keycalc-mcp: %v\n", err)
		return 1
	}
	defer application.Close()

	mc := application.Config().MCP()
	if httpAddr == "" {
		httpAddr = mc.HTTPAddr
	}
	if version != "dev" {
		mc.Version = version
	}

	srv, err := mcp.New(application.Dispatcher(), application.Calculator(),
		mcp.WithName(mc.Name),
		mcp.WithVersion(mc.Version),
		mcp.WithKeymap(application.Keymap()),
		mcp.WithLogger(application.Logger().WithComponent("mcp")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keycalc-mcp: %v\n", err)
		return 1
	}

	if httpAddr == "" {
		err = srv.ServeStdio()
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		err = srv.ServeHTTP(ctx, httpAddr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "keycalc-mcp: %v\n", err)
		return 1
	}
	return 0
}
