package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xtbdash/invest_dash/internal/model"
)

// MemoryStorage holds the serialized document in memory. Used by tests and
// as a throwaway driver.
type MemoryStorage struct {
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Save(_ context.Context, doc model.PortfolioDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	s.data = data
	return nil
}

func (s *MemoryStorage) Load(_ context.Context) (model.PortfolioDocument, error) {
	if s.data == nil {
		return model.PortfolioDocument{}, ErrNotFound
	}
	var doc model.PortfolioDocument
	if err := json.Unmarshal(s.data, &doc); err != nil {
		return model.PortfolioDocument{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
