package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{Backend: BackendSQLite, DataDir: "/tmp/data"}.WithDefaults()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "valid sqlite config",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: nil,
		},
		{
			name:    "empty backend returns ErrBackendEmpty",
			mutate:  func(c *Config) { c.Backend = "" },
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			mutate:  func(c *Config) { c.Backend = "postgres" },
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "pocketbase without url",
			mutate:  func(c *Config) { c.Backend = BackendPocketBase },
			wantErr: ErrURLEmpty,
		},
		{
			name: "pocketbase with unknown dialect",
			mutate: func(c *Config) {
				c.Backend = BackendPocketBase
				c.PocketBase.URL = "http://localhost:8090"
				c.PocketBase.Dialect = "other"
			},
			wantErr: ErrDialectUnknown,
		},
		{
			name: "pocketbase fully specified",
			mutate: func(c *Config) {
				c.Backend = BackendPocketBase
				c.PocketBase.URL = "http://localhost:8090"
			},
			wantErr: nil,
		},
		{
			name:    "redis favorites without url",
			mutate:  func(c *Config) { c.Favorites.Backend = FavoritesRedis },
			wantErr: ErrRedisURLEmpty,
		},
		{
			name:    "unknown favorites backend",
			mutate:  func(c *Config) { c.Favorites.Backend = "cookie" },
			wantErr: ErrFavoritesUnknown,
		},
		{
			name:    "unknown search mode",
			mutate:  func(c *Config) { c.Search.Mode = "regex" },
			wantErr: ErrSearchModeUnknown,
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Search.Threshold = 1.5 },
			wantErr: ErrThresholdInvalid,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: ErrTimeoutInvalid,
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Debounce = -time.Millisecond },
			wantErr: ErrDebounceInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Backend: BackendSQLite}.WithDefaults()

	if cfg.Search.Threshold != DefaultThreshold {
		t.Errorf("threshold = %v, want %v", cfg.Search.Threshold, DefaultThreshold)
	}
	if cfg.ReturnPhrase != DefaultReturnPhrase {
		t.Errorf("return phrase = %q, want %q", cfg.ReturnPhrase, DefaultReturnPhrase)
	}
	if cfg.Favorites.Key != DefaultFavoritesKey {
		t.Errorf("favorites key = %q, want %q", cfg.Favorites.Key, DefaultFavoritesKey)
	}
	if cfg.Timeout != DefaultTimeout || cfg.Debounce != DefaultDebounce {
		t.Errorf("timeouts = %v/%v", cfg.Timeout, cfg.Debounce)
	}

	custom := Config{Backend: BackendSQLite, ReturnPhrase: "RETURN", Timeout: time.Second}.WithDefaults()
	if custom.ReturnPhrase != "RETURN" || custom.Timeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", custom)
	}
}
