package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmcleod/adminshell/config"
	"github.com/jmcleod/adminshell/directory"
	"github.com/jmcleod/adminshell/gateway"
	"github.com/jmcleod/adminshell/login"
	"github.com/jmcleod/adminshell/storage"
	bboltstorage "github.com/jmcleod/adminshell/storage/bbolt"
	"github.com/jmcleod/adminshell/storage/memory"
)

const dbFile = "adminshell.db"

type app struct {
	cfg    config.Config
	logger *slog.Logger
	repo   storage.Repository
}

func wireApp(cfg config.Config, logOut io.Writer) (*app, error) {
	repo, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: newLogger(cfg, logOut), repo: repo}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func openRepository(cfg config.Config) (storage.Repository, error) {
	if cfg.Storage == config.StorageMemory {
		return memory.NewRepository(), nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	repo, err := bboltstorage.NewRepositoryFromFile(filepath.Join(cfg.DataDir, dbFile), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return repo, nil
}

func (a *app) accounts() (*gateway.Accounts, error) {
	return gateway.NewAccounts(a.repo)
}

func (a *app) gateway() (login.Gateway, error) {
	if a.cfg.AuthMode == config.AuthAccounts {
		accts, err := a.accounts()
		if err != nil {
			return nil, err
		}
		return accts, nil
	}
	return gateway.NewSimulated(a.cfg.AuthDelay), nil
}

func (a *app) directory() *directory.Directory {
	return directory.New(a.repo)
}
