package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/showroom/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (defaults when empty)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := injector.InitializeServer(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing server:", err)
		os.Exit(1)
	}
	defer cleanup()

	if err = srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error running server:", err)
		cleanup()
		os.Exit(1)
	}
}
