// Command todolist is a terminal todo list backed by a relational store and
// an object-storage bucket for attachments.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/app"
	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/attachment"
	"github.com/nhle/todolist/internal/blob"
	"github.com/nhle/todolist/internal/config"
	"github.com/nhle/todolist/internal/credential"
	"github.com/nhle/todolist/internal/logging"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/todo"
	"github.com/nhle/todolist/internal/ui/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "todolist:", apperr.UserMessage(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("", config.WithSecrets(credential.Lookup))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
	defer cancel()

	driver, err := cfg.Store.Driver()
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, driver, cfg.Store.DSN(), logger)
	if err != nil {
		return err
	}
	defer st.Close()

	blobs, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		return err
	}

	files := attachment.NewService(st, blobs, afero.NewOsFs(), logger)
	todos := todo.NewService(st, files, logger)
	state := session.New(cfg.Store.Timeout)

	logger.Info("starting",
		zap.String("driver", driver),
		zap.String("storage", cfg.Storage.Backend),
	)

	p := tea.NewProgram(
		app.New(todos, files, state, app.Options{DownloadDir: cfg.Download.Dir}),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func openBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (blob.Store, error) {
	if cfg.Storage.Backend == config.BackendLocal {
		return blob.NewLocalStore(cfg.Storage.Dir), nil
	}
	return blob.NewS3Store(ctx, cfg.Storage, cfg.Store.Key, logger)
}
