package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"taprush/internal/config"
	"taprush/internal/loop"
	"taprush/internal/server"
	"taprush/internal/sessions"
	"taprush/internal/termui"

	"github.com/gdamore/tcell/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := sessions.NewStore(loop.DefaultOptions(), sessions.DefaultTTL)
	_, shutdown := server.OpenArchive(cfg.DatabaseURL, store)
	defer shutdown()

	name := os.Getenv("USER")
	sess, err := store.Create(name)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer store.Delete(sess.Code)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialising screen: %w", err)
	}
	defer screen.Fini()

	ui := termui.New(screen, sess)
	ui.SetBadges(sess.Badges)
	ui.Run(ctx)
	return nil
}
