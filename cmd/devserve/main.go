package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/Kush-Singh-26/devserve/internal/config"
	"github.com/Kush-Singh-26/devserve/internal/logger"
	"github.com/Kush-Singh-26/devserve/internal/mime"
	"github.com/Kush-Singh-26/devserve/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrUsage) {
			printUsage()
		} else {
			_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "❌ %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.FromArgs(args)
	if err != nil {
		return err
	}

	serveCfg := config.LoadServeConfig()

	if err := logger.Init(logger.Options{Level: serveCfg.LogLevel}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(cfg, serveCfg, mime.NewResolver(mime.DefaultTable()))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	printBanner(srv.Addr(), cfg.RootDir, serveCfg.LiveReload)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	fmt.Println("\n✅ Server stopped.")
	return nil
}

func printBanner(addr, root string, liveReload bool) {
	bold := color.New(color.FgGreen, color.Bold)
	_, _ = bold.Printf("🌍 Serving on http://%s\n", addr)
	fmt.Printf("   Root: %s\n", root)
	if liveReload {
		fmt.Printf("   (Auto-reload events on %s)\n", server.EventsPath)
	}
	fmt.Println("   Press Ctrl+C to stop")
}

func printUsage() {
	fmt.Println("Usage: devserve <directory>")
	fmt.Println("\nServes <directory> on http://127.0.0.1:8080 with WASM-friendly content types.")
	fmt.Println("\nOptional devserve.yaml in the working directory:")
	fmt.Println("  shutdownTimeout   Graceful shutdown budget (default 5s)")
	fmt.Println("  debounceDuration  Live-reload debounce (default 300ms)")
	fmt.Println("  liveReload        Watch the directory and stream reload events (default true)")
	fmt.Println("  gzip              Compress responses for gzip-capable clients (default true)")
	fmt.Println("  logLevel          debug, info, warn or error (default info)")
}
