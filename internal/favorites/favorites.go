// Package favorites persists the favorites set: a JSON list of record IDs
// kept under one key, either as a file in the data directory or as a Redis
// string.
package favorites

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// decode parses a stored list. Unreadable data yields an empty list so a
// damaged value never blocks the catalog.
func decode(data []byte, source string, logger *slog.Logger) []string {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		logger.Warn("discarding unreadable favorites", "source", source, "err", err)
		return []string{}
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func encode(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding favorites: %w", err)
	}
	return data, nil
}

func keyOrDefault(key string) string {
	if key == "" {
		return types.DefaultFavoritesKey
	}
	return key
}
