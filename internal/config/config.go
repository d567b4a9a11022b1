// Package config loads importer settings from YAML or TOML and validates
// them against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/arx-os/arxos-sub004/internal/domain"
	"github.com/arx-os/arxos-sub004/internal/resolve"
)

//go:embed schema.cue
var schemaSource string

// Config is the importer configuration.
type Config struct {
	Address   AddressConfig     `json:"address" yaml:"address" toml:"address"`
	Anchors   AnchorConfig      `json:"anchors" yaml:"anchors" toml:"anchors"`
	Geometry  GeometryConfig    `json:"geometry" yaml:"geometry" toml:"geometry"`
	Equipment map[string]string `json:"equipment,omitempty" yaml:"equipment" toml:"equipment"`
	Ledger    string            `json:"ledger,omitempty" yaml:"ledger" toml:"ledger"`
	Log       LogConfig         `json:"log" yaml:"log" toml:"log"`
}

// AddressConfig is the fallback country/state/city prefix.
type AddressConfig struct {
	Country          string `json:"country" yaml:"country" toml:"country"`
	State            string `json:"state" yaml:"state" toml:"state"`
	City             string `json:"city" yaml:"city" toml:"city"`
	UsePostalAddress bool   `json:"use_postal_address" yaml:"use_postal_address" toml:"use_postal_address"`
}

type AnchorConfig struct {
	Keywords []string `json:"keywords" yaml:"keywords" toml:"keywords"`
}

type GeometryConfig struct {
	Meshes bool `json:"meshes" yaml:"meshes" toml:"meshes"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" toml:"level"`
}

// ConfigError reports a config file that cannot be decoded or does not
// satisfy the schema.
type ConfigError struct {
	File    string
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Address: AddressConfig{
			Country:          "usa",
			State:            "unknown",
			City:             "unknown",
			UsePostalAddress: true,
		},
		Anchors:  AnchorConfig{Keywords: []string{"MARKER", "ANCHOR"}},
		Geometry: GeometryConfig{Meshes: true},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads path, choosing the decoder by extension (.yaml, .yml or
// .toml). Keys absent from the file keep their Default values; unknown
// keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, &ConfigError{File: path, Message: err.Error()}
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, &ConfigError{File: path, Message: err.Error()}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, &ConfigError{File: path, Field: undecoded[0].String(), Message: "unknown field"}
		}
	default:
		return nil, &ConfigError{File: path, Message: fmt.Sprintf("unsupported config format %q", ext)}
	}

	if err := cfg.Validate(); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks c against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	doc := *c
	if doc.Anchors.Keywords == nil {
		doc.Anchors.Keywords = []string{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	value := ctx.CompileBytes(data, cue.Filename("config.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError keeps the first CUE error with its field path.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{Message: err.Error()}
	}
	first := errs[0]
	format, args := first.Msg()
	return &ConfigError{
		Field:   strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}
}

// Prefix returns the configured country/state/city address prefix.
func (c *Config) Prefix() domain.Address {
	return domain.NewAddress(c.Address.Country, c.Address.State, c.Address.City)
}

// LogLevel parses the configured level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}

// ResolveOptions converts c into resolver options logging to log.
func (c *Config) ResolveOptions(log zerolog.Logger) resolve.Options {
	opts := resolve.DefaultOptions()
	opts.Logger = log
	opts.Prefix = c.Prefix()
	opts.UsePostalAddress = c.Address.UsePostalAddress
	opts.AnchorKeywords = append([]string(nil), c.Anchors.Keywords...)
	opts.Meshes = c.Geometry.Meshes

	if len(c.Equipment) > 0 {
		opts.EquipmentKinds = make(map[string]domain.EquipmentKind, len(c.Equipment))
		for class, name := range c.Equipment {
			if kind, ok := domain.ParseEquipmentKind(name); ok {
				opts.EquipmentKinds[class] = kind
			}
		}
	}
	return opts
}
