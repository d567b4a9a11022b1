package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
)

// InspectResult summarises an IFC file without resolving it.
type InspectResult struct {
	File      string       `json:"file" yaml:"file"`
	Hash      string       `json:"hash" yaml:"hash"`
	Bytes     int          `json:"bytes" yaml:"bytes"`
	Entities  int          `json:"entities" yaml:"entities"`
	Classes   int          `json:"classes" yaml:"classes"`
	Truncated bool         `json:"truncated" yaml:"truncated"`
	Offset    int          `json:"offset,omitempty" yaml:"offset,omitempty"`
	Top       []ClassCount `json:"top" yaml:"top"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "inspect <file.ifc>",
		Short: "Summarise the entities of an IFC file",
		Long: `Lex and register an IFC file and print its entity count and class
histogram. Nothing is resolved, so inspect works on files without a project.

A warning is printed when lexing stopped on a malformed record before the
end of the DATA section.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], top, cmd)
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 10, "number of classes to list (0 lists all)")

	return cmd
}

func runInspect(opts *RootOptions, path string, top int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if top < 0 {
		return commandError(formatter, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("--top must not be negative, got %d", top))
	}

	loaded, err := LoadIFC(path)
	if err != nil {
		code, message := describeLoadError(err)
		return commandError(formatter, ExitCommandError, code, message)
	}

	histogram := loaded.Histogram()
	result := InspectResult{
		File:      filepath.Base(path),
		Hash:      loaded.Hash,
		Bytes:     loaded.Bytes,
		Entities:  loaded.Registry.Len(),
		Classes:   len(histogram),
		Truncated: loaded.Truncated,
		Top:       histogram,
	}
	if loaded.Truncated {
		result.Offset = loaded.Offset
	}
	if top > 0 && top < len(histogram) {
		result.Top = histogram[:top]
	}

	formatter.VerboseLog("Read %d bytes from %s", loaded.Bytes, path)

	return formatter.Success(result, func(w io.Writer) {
		writeInspectText(w, result, loaded.DataBytes)
	})
}

func writeInspectText(w io.Writer, r InspectResult, dataBytes int) {
	fmt.Fprintf(w, "File:      %s\n", r.File)
	fmt.Fprintf(w, "Entities:  %d\n", r.Entities)
	fmt.Fprintf(w, "Classes:   %d\n", r.Classes)
	if r.Truncated {
		fmt.Fprintf(w, "Warning:   input truncated at byte %d of %d in DATA section\n", r.Offset, dataBytes)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%7s  %s\n", "COUNT", "CLASS")
	for _, c := range r.Top {
		fmt.Fprintf(w, "%7d  %s\n", c.Count, c.Class)
	}
	if rest := r.Classes - len(r.Top); rest > 0 {
		fmt.Fprintf(w, "%7s  (%d more)\n", "...", rest)
	}
}
