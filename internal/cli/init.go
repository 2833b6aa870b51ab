package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/internal/store"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Backend    string            `yaml:"backend"`
	DataDir    string            `yaml:"data_dir,omitempty"`
	PocketBase *pocketBaseConfig `yaml:"pocketbase,omitempty"`
}

type pocketBaseConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection,omitempty"`
	Dialect    string `yaml:"dialect,omitempty"`
}

func newInitCmd(a *app) *cobra.Command {
	var (
		backend string
		url     string
		dialect string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml and prepare the data directory",
		Long: `Init writes config.yaml to the configuration directory if it does not
exist yet, then opens the backend once. For sqlite this creates the data
directory and an empty books.jsonl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if backend != "" {
				cfg.Backend = backend
			}
			if url != "" {
				cfg.PocketBase.URL = url
			}
			if dialect != "" {
				cfg.PocketBase.Dialect = dialect
			}
			if err := cfg.Validate(); err != nil {
				return sysError("init", err)
			}

			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return sysError("create config directory", err)
			}
			path := filepath.Join(a.configDir, paths.ConfigFile)
			written, err := writeConfigIfMissing(path, cfg)
			if err != nil {
				return sysError("write config", err)
			}

			st, err := store.Open(cfg, a.logger)
			if err != nil {
				return sysError("initialize storage", err)
			}
			if err := st.Close(); err != nil {
				return sysError("finalize storage", err)
			}

			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"config":  path,
					"written": written,
					"backend": cfg.Backend,
					"data":    cfg.DataDir,
				})
			}
			if !written {
				fmt.Fprintf(cmd.OutOrStdout(), "Keeping existing %s\n", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shelf initialized (%s backend, data in %s)\n", cfg.Backend, cfg.DataDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "catalog backend (sqlite or pocketbase)")
	cmd.Flags().StringVar(&url, "url", "", "PocketBase base URL")
	cmd.Flags().StringVar(&dialect, "dialect", "", "PocketBase field dialect (loan-field or status-field)")
	return cmd
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. It reports whether it wrote the file.
func writeConfigIfMissing(path string, cfg types.Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	out := configFile{Backend: cfg.Backend, DataDir: cfg.DataDir}
	if cfg.Backend == types.BackendPocketBase {
		out.PocketBase = &pocketBaseConfig{
			URL:        cfg.PocketBase.URL,
			Collection: cfg.PocketBase.Collection,
			Dialect:    cfg.PocketBase.Dialect,
		}
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
