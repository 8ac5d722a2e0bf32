// Command stockctl is the terminal client. It signs in against the configured
// backend and keeps the session in a local SQLite file between runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-stockyng/internal/config"
	"go-stockyng/pkg/logger"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stockctl <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", c.name, c.summary)
	}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		usage()
		os.Exit(2)
	}
	if _, ok := findCommand(os.Args[1]); !ok {
		fmt.Fprintf(os.Stderr, "stockctl: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	a, cleanup, err := open(ctx, cfg, os.Stdout, log)
	if err != nil {
		log.Error().Err(err).Msg("startup")
		os.Exit(1)
	}

	err = run(ctx, a, os.Args[1], os.Args[2:])
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}
