package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/store"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add books from a JSON or JSONL file",
		Long: `Import reads books from a JSON array or from JSON lines ("-" reads
stdin) and adds them to the catalog. Books whose id already exists are
skipped; books without an id get a new one.

Example:
  shelf import books.json
  cat books.jsonl | shelf import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			records, err := parseRecords(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			st, err := store.Open(a.cfg, a.logger)
			if err != nil {
				return sysError("open store", err)
			}
			defer st.Close()

			added, err := st.Import(cmd.Context(), records)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int{
					"read":    len(records),
					"added":   added,
					"skipped": len(records) - added,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d books (%d skipped)\n", added, len(records)-added)
			return nil
		},
	}
}

// parseRecords accepts a JSON array of records or one record per line.
// Blank lines are ignored.
func parseRecords(data []byte) ([]types.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []types.Record{}, nil
	}
	if trimmed[0] == '[' {
		var records []types.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrValidation, err)
		}
		return records, nil
	}

	records := make([]types.Record, 0)
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var r types.Record
		if err := json.Unmarshal(text, &r); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", types.ErrValidation, line, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
