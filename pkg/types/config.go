package types

import (
	"errors"
	"time"
)

// Config holds backend selection and engine parameters. The CLI fills it
// from config.yaml through viper; tests build it directly.
type Config struct {
	Backend      string           `mapstructure:"backend" yaml:"backend"`
	DataDir      string           `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	PocketBase   PocketBaseConfig `mapstructure:"pocketbase" yaml:"pocketbase,omitempty"`
	Favorites    FavoritesConfig  `mapstructure:"favorites" yaml:"favorites,omitempty"`
	Search       SearchConfig     `mapstructure:"search" yaml:"search,omitempty"`
	Timeout      time.Duration    `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Debounce     time.Duration    `mapstructure:"debounce" yaml:"debounce,omitempty"`
	ReturnPhrase string           `mapstructure:"return_phrase" yaml:"return_phrase,omitempty"`
}

// PocketBaseConfig locates a remote collection.
type PocketBaseConfig struct {
	URL        string `mapstructure:"url" yaml:"url,omitempty"`
	Collection string `mapstructure:"collection" yaml:"collection,omitempty"`
	Dialect    string `mapstructure:"dialect" yaml:"dialect,omitempty"`
}

// FavoritesConfig selects where the favorites set is persisted.
type FavoritesConfig struct {
	Backend  string `mapstructure:"backend" yaml:"backend,omitempty"`
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url,omitempty"`
	Key      string `mapstructure:"key" yaml:"key,omitempty"`
}

// SearchConfig tunes the text matcher and the collation locale.
type SearchConfig struct {
	Mode      string  `mapstructure:"mode" yaml:"mode,omitempty"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold,omitempty"`
	Locale    string  `mapstructure:"locale" yaml:"locale,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite     = "sqlite"
	BackendPocketBase = "pocketbase"
)

// Supported favorites stores.
const (
	FavoritesFile  = "file"
	FavoritesRedis = "redis"
)

// Supported search modes.
const (
	SearchFuzzy   = "fuzzy"
	SearchLiteral = "literal"
)

// PocketBase dialects: which fields carry the loan.
const (
	// DialectLoanField keeps the borrower in a single field; the status is derived.
	DialectLoanField = "loan-field"
	// DialectStatusField keeps a free-text status next to the borrower field.
	DialectStatusField = "status-field"
)

// Defaults applied by WithDefaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultDebounce     = 100 * time.Millisecond
	DefaultThreshold    = 0.4
	DefaultLocale       = "es"
	DefaultReturnPhrase = "DEVOLVER"
	DefaultFavoritesKey = "libros_favoritos"
	DefaultCollection   = "Libros"
)

// Config validation errors.
var (
	ErrBackendEmpty      = errors.New("backend must not be empty")
	ErrBackendUnknown    = errors.New("unknown backend")
	ErrURLEmpty          = errors.New("pocketbase url must not be empty")
	ErrDialectUnknown    = errors.New("unknown pocketbase dialect")
	ErrFavoritesUnknown  = errors.New("unknown favorites backend")
	ErrRedisURLEmpty     = errors.New("favorites redis_url must not be empty")
	ErrSearchModeUnknown = errors.New("unknown search mode")
	ErrThresholdInvalid  = errors.New("search threshold must be within [0, 1]")
	ErrTimeoutInvalid    = errors.New("timeout must be positive")
	ErrDebounceInvalid   = errors.New("debounce must not be negative")
	ErrReturnPhraseEmpty = errors.New("return phrase must not be empty")
)

var knownBackends = map[string]bool{
	BackendSQLite:     true,
	BackendPocketBase: true,
}

var knownDialects = map[string]bool{
	DialectLoanField:   true,
	DialectStatusField: true,
}

// WithDefaults returns a copy with every unset optional field filled.
func (c Config) WithDefaults() Config {
	if c.PocketBase.Collection == "" {
		c.PocketBase.Collection = DefaultCollection
	}
	if c.PocketBase.Dialect == "" {
		c.PocketBase.Dialect = DialectLoanField
	}
	if c.Favorites.Backend == "" {
		c.Favorites.Backend = FavoritesFile
	}
	if c.Favorites.Key == "" {
		c.Favorites.Key = DefaultFavoritesKey
	}
	if c.Search.Mode == "" {
		c.Search.Mode = SearchFuzzy
	}
	if c.Search.Threshold == 0 {
		c.Search.Threshold = DefaultThreshold
	}
	if c.Search.Locale == "" {
		c.Search.Locale = DefaultLocale
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Debounce == 0 {
		c.Debounce = DefaultDebounce
	}
	if c.ReturnPhrase == "" {
		c.ReturnPhrase = DefaultReturnPhrase
	}
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. Call WithDefaults first; Validate does not
// fill anything in.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendPocketBase {
		if c.PocketBase.URL == "" {
			return ErrURLEmpty
		}
		if !knownDialects[c.PocketBase.Dialect] {
			return ErrDialectUnknown
		}
	}
	switch c.Favorites.Backend {
	case FavoritesFile:
	case FavoritesRedis:
		if c.Favorites.RedisURL == "" {
			return ErrRedisURLEmpty
		}
	default:
		return ErrFavoritesUnknown
	}
	if c.Search.Mode != SearchFuzzy && c.Search.Mode != SearchLiteral {
		return ErrSearchModeUnknown
	}
	if c.Search.Threshold < 0 || c.Search.Threshold > 1 {
		return ErrThresholdInvalid
	}
	if c.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	if c.Debounce < 0 {
		return ErrDebounceInvalid
	}
	if c.ReturnPhrase == "" {
		return ErrReturnPhraseEmpty
	}
	return nil
}
