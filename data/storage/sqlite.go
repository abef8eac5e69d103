package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/xtbdash/invest_dash/internal/model"
)

// SQLiteStorage keeps the document in a single-row table, the embedded-DB
// flavor of the same one-document persistence.
type SQLiteStorage struct {
	db *sqlx.DB
}

const createDocumentTable = `
CREATE TABLE IF NOT EXISTS portfolio_document (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

func NewSQLiteStorage(db *sqlx.DB) (*SQLiteStorage, error) {
	if _, err := db.Exec(createDocumentTable); err != nil {
		return nil, fmt.Errorf("create portfolio_document table: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, doc model.PortfolioDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	query := `INSERT INTO portfolio_document (id, body, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, string(data)); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Load(ctx context.Context) (model.PortfolioDocument, error) {
	var body string
	err := s.db.GetContext(ctx, &body, `SELECT body FROM portfolio_document WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PortfolioDocument{}, ErrNotFound
		}
		return model.PortfolioDocument{}, fmt.Errorf("select document: %w", err)
	}

	var doc model.PortfolioDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return model.PortfolioDocument{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
