package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arx-os/arxos-sub004/internal/config"
	"github.com/arx-os/arxos-sub004/internal/domain"
	"github.com/arx-os/arxos-sub004/internal/logging"
	"github.com/arx-os/arxos-sub004/internal/resolve"
	"github.com/arx-os/arxos-sub004/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	ConfigPath string
	LedgerPath string
	OutputPath string
}

// ImportResult is the outcome of one import.
type ImportResult struct {
	File        string               `json:"file" yaml:"file"`
	Hash        string               `json:"hash" yaml:"hash"`
	Truncated   bool                 `json:"truncated" yaml:"truncated"`
	Address     domain.Address       `json:"address" yaml:"address"`
	Floors      int                  `json:"floors" yaml:"floors"`
	Rooms       int                  `json:"rooms" yaml:"rooms"`
	Equipment   int                  `json:"equipment" yaml:"equipment"`
	ImportID    int64                `json:"import_id,omitempty" yaml:"import_id,omitempty"`
	Recorded    bool                 `json:"recorded" yaml:"recorded"`
	Output      string               `json:"output,omitempty" yaml:"output,omitempty"`
	Building    *domain.Building     `json:"building,omitempty" yaml:"building,omitempty"`
	Diagnostics []resolve.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <file.ifc>",
		Short: "Resolve an IFC file into an addressed building",
		Long: `Resolve an IFC file into a building with floors, wings, rooms and
equipment, each carrying a hierarchical address.

Gaps in the model (missing placements, unnamed elements, malformed ids)
do not fail the import; each one is listed as a diagnostic. The only hard
failure is a file without an IFCPROJECT.

With --ledger the import is recorded in a SQLite ledger; importing the
same file for the same building again leaves the ledger unchanged.
With --output the full building is written to a file, as YAML when the
name ends in .yaml or .yml and as JSON otherwise.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	cmd.Flags().StringVar(&opts.LedgerPath, "ledger", "", "SQLite import ledger (overrides the config)")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "write the resolved building to this file")

	return cmd
}

func runImport(rootOpts *RootOptions, opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return commandError(formatter, ExitCommandError, ErrCodeConfig, err.Error())
		}
		cfg = loaded
		formatter.VerboseLog("Loaded config %s", opts.ConfigPath)
	}

	log := logging.New(cmd.ErrOrStderr(), logging.Verbosity(cfg.LogLevel(), rootOpts.Verbose)).
		With().Str("file", filepath.Base(path)).Logger()

	loaded, err := LoadIFC(path)
	if err != nil {
		code, message := describeLoadError(err)
		return commandError(formatter, ExitCommandError, code, message)
	}
	if loaded.Truncated {
		log.Warn().
			Int("offset", loaded.Offset).
			Int("data_bytes", loaded.DataBytes).
			Int("entities", loaded.Registry.Len()).
			Msg("malformed record, input truncated")
	}

	res, err := resolve.Resolve(loaded.Registry, cfg.ResolveOptions(log))
	if err != nil {
		var resErr *resolve.ResolveError
		if errors.As(err, &resErr) {
			return commandError(formatter, ExitFailure, resErr.Code, resErr.Message)
		}
		return commandError(formatter, ExitFailure, ErrCodeGeneric, err.Error())
	}

	b := res.Building
	result := ImportResult{
		File:        filepath.Base(path),
		Hash:        loaded.Hash,
		Truncated:   loaded.Truncated,
		Address:     b.Address,
		Floors:      len(b.Floors),
		Rooms:       len(b.Rooms()),
		Equipment:   len(b.Equipment),
		Diagnostics: res.Diagnostics,
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []resolve.Diagnostic{}
	}

	ledger := cfg.Ledger
	if opts.LedgerPath != "" {
		ledger = opts.LedgerPath
	}
	if ledger != "" {
		id, inserted, err := recordImport(cmd, ledger, loaded, res)
		if err != nil {
			return commandError(formatter, ExitCommandError, ErrCodeLedger, err.Error())
		}
		result.ImportID = id
		result.Recorded = inserted
		log.Debug().Int64("import_id", id).Bool("inserted", inserted).Str("ledger", ledger).Msg("ledger updated")
	}

	if opts.OutputPath != "" {
		if err := writeBuilding(opts.OutputPath, b); err != nil {
			return commandError(formatter, ExitCommandError, ErrCodeWriteFailed, err.Error())
		}
		result.Output = opts.OutputPath
		formatter.VerboseLog("Wrote %s", opts.OutputPath)
	} else {
		result.Building = b
	}

	return formatter.Success(result, func(w io.Writer) {
		writeImportText(w, result, b)
	})
}

func recordImport(cmd *cobra.Command, path string, loaded *LoadResult, res *resolve.Result) (int64, bool, error) {
	s, err := store.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("open ledger: %w", err)
	}
	defer s.Close()

	src := store.Source{Name: filepath.Base(loaded.Path), Hash: loaded.Hash}
	return s.RecordImport(cmd.Context(), src, res.Building, len(res.Diagnostics))
}

// writeBuilding encodes b by the extension of path.
func writeBuilding(path string, b *domain.Building) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	if err := encodeTo(f, format, b); err != nil {
		f.Close()
		return fmt.Errorf("encode building: %w", err)
	}
	return f.Close()
}

func writeImportText(w io.Writer, r ImportResult, b *domain.Building) {
	fmt.Fprintf(w, "✓ Imported %s as %s\n", b.Name, r.Address)
	if r.Truncated {
		fmt.Fprintln(w, "  warning: input truncated, later records were skipped")
	}
	fmt.Fprintln(w)

	for _, f := range b.Floors {
		fmt.Fprintf(w, "  %s  (elevation %.2f)\n", f.Address, f.Elevation)
		for _, wing := range f.Wings {
			indent := "    "
			if wing.Name != domain.MainWing {
				fmt.Fprintf(w, "    %s\n", wing.Address)
				indent = "      "
			}
			for _, room := range wing.Rooms {
				fmt.Fprintf(w, "%s%s\n", indent, room.Address)
			}
		}
	}

	if len(b.Equipment) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Equipment (%d):\n", len(b.Equipment))
		for _, e := range b.Equipment {
			fmt.Fprintf(w, "  %s  %s\n", e.Address, e.Type)
		}
	}

	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Diagnostics (%d):\n", len(r.Diagnostics))
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}

	if r.ImportID != 0 {
		fmt.Fprintln(w)
		if r.Recorded {
			fmt.Fprintf(w, "Ledger: recorded as import %d\n", r.ImportID)
		} else {
			fmt.Fprintf(w, "Ledger: already recorded as import %d\n", r.ImportID)
		}
	}
	if r.Output != "" {
		fmt.Fprintf(w, "Output: %s\n", r.Output)
	}
}
