package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// envPrefix namespaces environment overrides: SHELF_BACKEND,
	// SHELF_POCKETBASE_URL, SHELF_SEARCH_MODE and so on.
	envPrefix = "SHELF"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Shelf configuration

# Catalog backend: sqlite or pocketbase
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# pocketbase:
#   url: http://127.0.0.1:8090
#   collection: Libros
#   dialect: loan-field   # or status-field

# favorites:
#   backend: file         # or redis
#   redis_url: redis://localhost:6379/0
#   key: libros_favoritos

# search:
#   mode: fuzzy           # or literal
#   threshold: 0.4
#   locale: es

# timeout: 30s
# debounce: 100ms
# return_phrase: DEVOLVER
`

// configDefaults registers every key so that environment overrides reach
// Unmarshal even when config.yaml leaves the key out.
var configDefaults = map[string]any{
	"backend":               types.BackendSQLite,
	"data_dir":              "",
	"pocketbase.url":        "",
	"pocketbase.collection": types.DefaultCollection,
	"pocketbase.dialect":    types.DialectLoanField,
	"favorites.backend":     types.FavoritesFile,
	"favorites.redis_url":   "",
	"favorites.key":         types.DefaultFavoritesKey,
	"search.mode":           types.SearchFuzzy,
	"search.threshold":      types.DefaultThreshold,
	"search.locale":         types.DefaultLocale,
	"timeout":               types.DefaultTimeout,
	"debounce":              types.DefaultDebounce,
	"return_phrase":         types.DefaultReturnPhrase,
}

// loadConfig reads config.yaml from configDir using Viper. With
// writeDefault it creates the directory and a default config.yaml on first
// run. A missing config.yaml is not an error.
func loadConfig(configDir string, writeDefault bool) (*viper.Viper, error) {
	if writeDefault {
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return nil, fmt.Errorf("ensure default config: %w", err)
		}
	}

	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeConfig unmarshals v into a Config. Durations accept Go syntax
// ("30s", "150ms").
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// ensureDefaultConfigFile creates config.yaml if it does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFile)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
