package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arx-os/arxos-sub004/internal/registry"
	"github.com/arx-os/arxos-sub004/internal/step"
	"github.com/arx-os/arxos-sub004/internal/store"
)

// Error codes for CLI output (E001-E099).
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // IFC file unreadable
	ErrCodeNoEntities  = "E003" // No entity records found
	ErrCodeConfig      = "E004" // Config file invalid
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeLedger      = "E006" // Ledger open/read/write failed
	ErrCodeWriteFailed = "E007" // Output file write error
)

// LoadResult is a fully registered IFC file.
type LoadResult struct {
	Path     string
	Registry *registry.Registry
	Hash     string // store.SourceHash of the raw file
	Bytes    int

	// Truncated is set when lexing stopped on a malformed record before the
	// end of the DATA section. Offset is where it stopped, relative to the
	// section start, and DataBytes the section length.
	Truncated bool
	Offset    int
	DataBytes int
}

// LoadError represents an error that occurred while loading an IFC file.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadIFC reads path and registers every entity record of its DATA
// section. A malformed record ends lexing; entities before it are kept
// and the result is marked Truncated.
func LoadIFC(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("IFC file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading IFC file: %v", err)}
	}

	section := step.DataSection(string(data))
	lexer := step.NewLexer(section)
	reg := registry.Populate(lexer)
	if reg.Len() == 0 {
		return nil, &LoadError{Code: ErrCodeNoEntities, Message: fmt.Sprintf("no entity records in %s", filepath.Base(path))}
	}

	return &LoadResult{
		Path:      path,
		Registry:  reg,
		Hash:      store.SourceHash(data),
		Bytes:     len(data),
		Truncated: lexer.Stopped(),
		Offset:    lexer.Offset(),
		DataBytes: lexer.Len(),
	}, nil
}

// ClassCount is one row of a class histogram.
type ClassCount struct {
	Class string `json:"class" yaml:"class"`
	Count int    `json:"count" yaml:"count"`
}

// Histogram returns entity counts per class, most frequent first and ties
// by class name.
func (r *LoadResult) Histogram() []ClassCount {
	classes := r.Registry.Classes()
	out := make([]ClassCount, 0, len(classes))
	for class, n := range classes {
		out = append(out, ClassCount{Class: class, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Class < out[j].Class
	})
	return out
}

// describeLoadError splits a *LoadError into code and message. Other
// errors map to ErrCodeGeneric.
func describeLoadError(err error) (code, message string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}
