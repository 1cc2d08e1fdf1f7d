// Package config loads the gossa command's YAML configuration file.
//
// The file is validated against an embedded JSON schema before it is
// decoded. Environment variables override file values at runtime.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/gossa/gossa/internal/logging"
	"github.com/gossa/gossa/internal/types"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".gossa.yaml"

// Env var names used as overrides.
const (
	EnvConfig      = "GOSSA_CONFIG"
	EnvMinSeverity = "GOSSA_MIN_SEVERITY"
	EnvIgnore      = "GOSSA_IGNORE" // comma separated
	EnvCharset     = "GOSSA_CHARSET"
	EnvWorkers     = "GOSSA_WORKERS"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON schema configuration files are validated against.
func Schema() []byte { return schemaJSON }

// ErrInvalid wraps schema violations.
var ErrInvalid = errors.New("invalid configuration")

type DiagnosticsConfig struct {
	MinSeverity string            `yaml:"min_severity"`
	Ignore      []string          `yaml:"ignore"`
	Overrides   map[string]string `yaml:"overrides"`
}

type ParseConfig struct {
	Charset           string   `yaml:"charset"`
	SemanticChecks    *bool    `yaml:"semantic_checks"`
	MarkupChecks      *bool    `yaml:"markup_checks"`
	ProcessExtensions bool     `yaml:"process_extensions"`
	Workers           int      `yaml:"workers"`
	Extensions        []string `yaml:"extensions"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type Config struct {
	ConfigVersion int               `yaml:"config_version"`
	Diagnostics   DiagnosticsConfig `yaml:"diagnostics"`
	Parse         ParseConfig       `yaml:"parse"`
	Logging       LoggingConfig     `yaml:"logging"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		ConfigVersion: 1,
		Diagnostics:   DiagnosticsConfig{MinSeverity: "info"},
		Logging:       LoggingConfig{Format: "text"},
	}
}

// Load reads path, or DefaultFile when path is empty, and applies
// environment overrides. A missing DefaultFile is not an error; a missing
// explicit path is.
func Load(path string) (Config, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if cfg, err = Parse(data); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return cfg, err
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse validates and decodes a YAML document on top of Defaults.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, err
	}
	if doc == nil {
		return cfg, nil
	}
	if err := Validate(doc); err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks a decoded document against the embedded schema.
func Validate(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvMinSeverity); v != "" {
		cfg.Diagnostics.MinSeverity = v
	}
	if v := os.Getenv(EnvIgnore); v != "" {
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				cfg.Diagnostics.Ignore = append(cfg.Diagnostics.Ignore, code)
			}
		}
	}
	if v := os.Getenv(EnvCharset); v != "" {
		cfg.Parse.Charset = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: bad worker count %q", EnvWorkers, v)
		}
		cfg.Parse.Workers = n
	}
	env := logging.FromEnv()
	if env.Level != "" {
		cfg.Logging.Level = env.Level
	}
	if os.Getenv("GOSSA_LOG_FORMAT") != "" {
		cfg.Logging.Format = env.Format
	}
	if env.File != "" {
		cfg.Logging.File = env.File
	}
	cfg.Logging.Source = cfg.Logging.Source || env.AddSource
	return nil
}

// DiagnosticConfig converts the diagnostics block.
func (c Config) DiagnosticConfig() (types.DiagnosticConfig, error) {
	dc := types.DefaultConfig()
	if c.Diagnostics.MinSeverity != "" {
		sev, ok := types.ParseSeverity(c.Diagnostics.MinSeverity)
		if !ok || sev == types.SeverityFatal {
			return dc, fmt.Errorf("%w: min_severity %q", ErrInvalid, c.Diagnostics.MinSeverity)
		}
		dc.MinSeverity = sev
	}
	dc.Ignore = append(dc.Ignore, c.Diagnostics.Ignore...)
	for code, name := range c.Diagnostics.Overrides {
		sev, ok := types.ParseSeverity(name)
		if !ok || sev == types.SeverityFatal {
			return dc, fmt.Errorf("%w: override %s: severity %q", ErrInvalid, code, name)
		}
		if dc.Overrides == nil {
			dc.Overrides = make(map[string]types.Severity)
		}
		dc.Overrides[code] = sev
	}
	return dc, nil
}

// LogOptions converts the logging block.
func (c Config) LogOptions() logging.Options {
	return logging.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}
