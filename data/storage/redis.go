package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/xtbdash/invest_dash/internal/model"
	"github.com/xtbdash/invest_dash/utils"
)

// RedisStorage keeps the whole document as JSON under a single key, no
// expiration.
type RedisStorage struct {
	redis *redis.Client
	key   string
}

func NewRedisStorage(client *redis.Client, key string) *RedisStorage {
	return &RedisStorage{redis: client, key: key}
}

func (s *RedisStorage) Save(ctx context.Context, doc model.PortfolioDocument) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	data, err := json.Marshal(doc)
	if err != nil {
		slog.Error("can't marshal document in RedisStorage.Save", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return fmt.Errorf("marshal document: %w", err)
	}

	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("key", s.key), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *RedisStorage) Load(ctx context.Context) (model.PortfolioDocument, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := s.redis.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.PortfolioDocument{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("key", s.key), slog.String("err", err.Error()))
		return model.PortfolioDocument{}, err
	}

	var doc model.PortfolioDocument
	if err := json.Unmarshal([]byte(res), &doc); err != nil {
		slog.Error("can't unmarshal document in RedisStorage.Load", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.PortfolioDocument{}, fmt.Errorf("decode document: %w", err)
	}

	return doc, nil
}
