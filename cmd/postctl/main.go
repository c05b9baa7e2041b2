// Command postctl drives the scheduling backend from a terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	config "github.com/maheshrc27/postflow-studio/configs"
	"github.com/maheshrc27/postflow-studio/internal/cli"
	"github.com/maheshrc27/postflow-studio/internal/client"
	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/service"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The CLI always keeps its session in a local file, whatever driver the
	// server uses.
	store, err := repository.NewFileStorage(cfg.StorageDir)
	if err != nil {
		return err
	}
	defer store.Close()

	backend, err := client.New(client.Options{BaseURL: cfg.APIBaseURL, Timeout: cfg.RequestTimeout})
	if err != nil {
		return err
	}

	media, err := service.NewLocalStore(filepath.Join(os.TempDir(), "postctl-media"))
	if err != nil {
		return err
	}

	app := cli.New(cli.Options{
		Config:   *cfg,
		Backend:  backend,
		Store:    store,
		Media:    media,
		Launcher: cli.BrowserLauncher{},
	})
	return app.Run(ctx, args)
}
