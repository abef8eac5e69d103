package data

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/xtbdash/invest_dash/config"
	_ "modernc.org/sqlite" // sqlite driver
)

func NewSQLiteClient(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", cfg.SQLite.Path)
	if err != nil {
		slog.Error("Error while opening sqlite database", slog.String("path", cfg.SQLite.Path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// one local process, no pool needed
	db.SetMaxOpenConns(1)

	return db, nil
}
