package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/showroom/internal/config"
	"github.com/zeusync/showroom/internal/core/catalog"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (defaults when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "showroom-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	roomCfg, err := cfg.BuildShowroom()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	v, err := newViewer(screen, roomCfg, cat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return v.run(ctx, time.Second/time.Duration(cfg.Server.TickRate))
}
