package favorites

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Store is a favorites store that may hold a connection.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
	Close() error
}

// Open returns the store named by cfg. File stores live in dataDir.
func Open(cfg types.FavoritesConfig, dataDir string, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", types.FavoritesFile:
		return NewFileStore(dataDir, cfg.Key, logger), nil
	case types.FavoritesRedis:
		if cfg.RedisURL == "" {
			return nil, types.ErrRedisURLEmpty
		}
		s, err := NewRedisStore(cfg.RedisURL, cfg.Key, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrFavoritesUnknown, cfg.Backend)
	}
}
