package storage

import (
	"context"
	"fmt"

	"github.com/xtbdash/invest_dash/config"
	"github.com/xtbdash/invest_dash/data"
	"github.com/xtbdash/invest_dash/internal/model"
)

// Backend is implemented by every storage driver.
type Backend interface {
	Save(ctx context.Context, doc model.PortfolioDocument) error
	Load(ctx context.Context) (model.PortfolioDocument, error)
}

// New builds the configured storage driver and returns it with its close
// function.
func New(cfg *config.Config) (Backend, func() error, error) {
	switch cfg.Storage.Driver {
	case "file":
		return NewFileStorage(cfg.Storage.FilePath), noClose, nil
	case "memory":
		return NewMemoryStorage(), noClose, nil
	case "redis":
		client, err := data.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStorage(client, cfg.Redis.Key), client.Close, nil
	case "sqlite":
		db, err := data.NewSQLiteClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		backend, err := NewSQLiteStorage(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return backend, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func noClose() error { return nil }
