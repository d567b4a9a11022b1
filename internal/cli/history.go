package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arx-os/arxos-sub004/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	LedgerPath string
	ImportID   int64
}

// HistoryResult lists ledger entries, or one entry with its equipment.
type HistoryResult struct {
	Imports   []store.Import          `json:"imports" yaml:"imports"`
	Equipment []store.EquipmentRecord `json:"equipment,omitempty" yaml:"equipment,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List imports recorded in a ledger",
		Long: `List the imports recorded in a SQLite ledger in the order they were made.

With --import the selected import is shown together with the equipment
recorded for it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LedgerPath, "ledger", "", "SQLite import ledger (required)")
	cmd.Flags().Int64Var(&opts.ImportID, "import", 0, "show one import and its equipment")
	_ = cmd.MarkFlagRequired("ledger")

	return cmd
}

func runHistory(rootOpts *RootOptions, opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)
	ctx := cmd.Context()

	s, err := store.Open(opts.LedgerPath)
	if err != nil {
		return commandError(formatter, ExitCommandError, ErrCodeLedger, err.Error())
	}
	defer s.Close()

	var result HistoryResult
	if opts.ImportID != 0 {
		imp, ok, err := s.GetImport(ctx, opts.ImportID)
		if err != nil {
			return commandError(formatter, ExitCommandError, ErrCodeLedger, err.Error())
		}
		if !ok {
			return commandError(formatter, ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("import %d not found in %s", opts.ImportID, opts.LedgerPath))
		}
		equipment, err := s.ListEquipment(ctx, imp.ID)
		if err != nil {
			return commandError(formatter, ExitCommandError, ErrCodeLedger, err.Error())
		}
		result = HistoryResult{Imports: []store.Import{imp}, Equipment: equipment}
	} else {
		imports, err := s.ListImports(ctx)
		if err != nil {
			return commandError(formatter, ExitCommandError, ErrCodeLedger, err.Error())
		}
		result = HistoryResult{Imports: imports}
	}

	return formatter.Success(result, func(w io.Writer) {
		writeHistoryText(w, result, opts.ImportID != 0)
	})
}

func writeHistoryText(w io.Writer, r HistoryResult, detail bool) {
	if len(r.Imports) == 0 {
		fmt.Fprintln(w, "No imports recorded")
		return
	}

	fmt.Fprintf(w, "%4s  %4s  %-20s  %6s  %5s  %9s  %11s  %s\n",
		"ID", "SEQ", "SOURCE", "FLOORS", "ROOMS", "EQUIPMENT", "DIAGNOSTICS", "BUILDING")
	for _, imp := range r.Imports {
		fmt.Fprintf(w, "%4d  %4d  %-20s  %6d  %5d  %9d  %11d  %s\n",
			imp.ID, imp.Seq, imp.SourceName, imp.Floors, imp.Rooms, imp.Equipment, imp.Diagnostics, imp.BuildingAddress)
	}

	if !detail {
		return
	}
	fmt.Fprintln(w)
	if len(r.Equipment) == 0 {
		fmt.Fprintln(w, "No equipment recorded")
		return
	}
	for _, e := range r.Equipment {
		fmt.Fprintf(w, "  %s  %s  %s\n", e.Address, e.Kind, e.UUID)
	}
}
