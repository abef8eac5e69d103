package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xtbdash/invest_dash/internal/model"
)

// FileStorage keeps the document as one JSON file. Writes go through a
// temp file and rename so a crash never leaves a half-written document.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Save(_ context.Context, doc model.PortfolioDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (s *FileStorage) Load(_ context.Context) (model.PortfolioDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.PortfolioDocument{}, ErrNotFound
		}
		return model.PortfolioDocument{}, fmt.Errorf("read document: %w", err)
	}

	var doc model.PortfolioDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.PortfolioDocument{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
