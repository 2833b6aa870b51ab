// Package cli implements the shelf command-line interface.
package cli

import (
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// app holds the global flag values and the configuration resolved before
// any subcommand runs.
type app struct {
	configDirFlag string
	dataDirFlag   string
	jsonMode      bool
	verbose       bool

	configDir string
	cfg       types.Config
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "shelf" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	root := &cobra.Command{
		Use:   "shelf",
		Short: "Browse and lend the books of a home library",
		Long: `Shelf loads a book catalog from a local SQLite file or a remote
PocketBase collection and lets you search, filter, sort, mark favorites and
record loans and returns.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDirFlag, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDirFlag, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newOptionsCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newLoanCmd(a))
	root.AddCommand(newReturnCmd(a))
	root.AddCommand(newFavCmd(a))
	root.AddCommand(newBrowseCmd(a))

	return root
}

// setup builds the logger and resolves directories and configuration.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.configDirFlag)
	if err != nil {
		return sysError("resolve config dir", err)
	}
	v, err := loadConfig(configDir, cmd.Name() != "init")
	if err != nil {
		return sysError("load config", err)
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return sysError("load config", err)
	}
	dataDir, err := paths.ResolveDataDir(a.dataDirFlag, cfg.DataDir)
	if err != nil {
		return sysError("resolve data dir", err)
	}
	cfg.DataDir = dataDir

	a.configDir = configDir
	a.cfg = cfg.WithDefaults()
	a.logger.Debug("config loaded", "config_dir", configDir, "data_dir", dataDir, "backend", a.cfg.Backend)
	return nil
}
