package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todos/internal/config"
	"github.com/sandeepkv93/todos/internal/controller"
	"github.com/sandeepkv93/todos/internal/event"
	"github.com/sandeepkv93/todos/internal/logging"
	"github.com/sandeepkv93/todos/internal/storage"
	"github.com/sandeepkv93/todos/internal/store"
	"github.com/sandeepkv93/todos/internal/views"
)

// app is the fully wired object graph behind every command.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *store.Store
	board   *views.Board
	ctrl    *controller.Controller
	closers []io.Closer
}

func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	adapter, adapterCloser, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	a.closers = append(a.closers, adapterCloser)

	entry := logger.WithField("backend", cfg.Storage.Backend)
	hub := event.NewHub(entry)
	a.store = store.New(hub, adapter,
		store.WithNamespace(cfg.Storage.Namespace),
		store.WithLogger(entry),
	)
	a.board = views.NewBoard()
	a.ctrl, err = controller.New(ctx, hub, a.store, a.board, controller.WithLogger(entry))
	if err != nil {
		a.Close()
		return nil, err
	}
	entry.WithField("size", a.store.Size()).Debug("list loaded")
	return a, nil
}

// Close releases storage before the log file so shutdown errors still get
// logged.
func (a *app) Close() error {
	if a.ctrl != nil {
		a.ctrl.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			if a.logger != nil && i > 0 {
				a.logger.WithError(err).Warn("close failed")
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// itemAt resolves a 1-based list position to a task id.
func (a *app) itemAt(pos int) (views.BoardItem, error) {
	items := a.board.Snapshot().Items
	if pos < 1 || pos > len(items) {
		return views.BoardItem{}, fmt.Errorf("no task #%d (list has %d)", pos, len(items))
	}
	return items[pos-1], nil
}
