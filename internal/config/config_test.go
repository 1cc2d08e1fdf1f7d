package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gossa/gossa/internal/testutil"
	"github.com/gossa/gossa/internal/types"
)

const sample = `
config_version: 1
diagnostics:
  min_severity: warning
  ignore: ["tag-*", style-undefined]
  overrides:
    field-overflow: warning
parse:
  charset: windows-1252
  markup_checks: false
  workers: 4
  extensions: [".ass", ".txt"]
logging:
  level: debug
  format: json
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	testutil.NoError(t, err)
	testutil.Equal(t, "warning", cfg.Diagnostics.MinSeverity)
	testutil.SliceEqual(t, []string{"tag-*", "style-undefined"}, cfg.Diagnostics.Ignore)
	testutil.Equal(t, "windows-1252", cfg.Parse.Charset)
	testutil.Equal(t, 4, cfg.Parse.Workers)
	testutil.True(t, cfg.Parse.SemanticChecks == nil, "unset stays nil")
	testutil.NotNil(t, cfg.Parse.MarkupChecks)
	testutil.False(t, *cfg.Parse.MarkupChecks)
	testutil.Equal(t, "debug", cfg.Logging.Level)
	testutil.Equal(t, "json", cfg.LogOptions().Format)

	dc, err := cfg.DiagnosticConfig()
	testutil.NoError(t, err)
	testutil.Equal(t, types.SeverityWarning, dc.MinSeverity)
	testutil.Equal(t, types.SeverityWarning, dc.Overrides["field-overflow"])
	testutil.Len(t, dc.Ignore, 2)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	testutil.NoError(t, err)
	testutil.Equal(t, "info", cfg.Diagnostics.MinSeverity)
	testutil.Equal(t, 1, cfg.ConfigVersion)
}

func TestParseSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", "colour: red\n", "colour"},
		{"bad severity", "diagnostics:\n  min_severity: fatal\n", "min_severity"},
		{"bad override", "diagnostics:\n  overrides:\n    tag-unknown: loud\n", "tag-unknown"},
		{"negative workers", "parse:\n  workers: -1\n", "workers"},
		{"bad extension", "parse:\n  extensions: [ass]\n", "extensions"},
		{"wrong type", "parse:\n  markup_checks: maybe\n", "markup_checks"},
		{"bad version", "config_version: 2\n", "config_version"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			testutil.Error(t, err)
			testutil.True(t, errors.Is(err, ErrInvalid), "want ErrInvalid, got %v", err)
			testutil.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseBadYAML(t *testing.T) {
	_, err := Parse([]byte("diagnostics: [unclosed\n"))
	testutil.Error(t, err)
}

func TestLoadMissingDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvConfig, "")
	cfg, err := Load("")
	testutil.NoError(t, err)
	testutil.Equal(t, Defaults().Diagnostics.MinSeverity, cfg.Diagnostics.MinSeverity)
}

func TestLoadMissingExplicit(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	testutil.Error(t, err)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gossa.yaml")
	testutil.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	t.Setenv(EnvIgnore, "field-missing, ,format-unknown-field")
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvCharset, "shift_jis")
	t.Setenv("GOSSA_LOG_LEVEL", "trace")
	t.Setenv("GOSSA_LOG_FORMAT", "")
	t.Setenv("GOSSA_LOG_FILE", "")
	t.Setenv("GOSSA_LOG_SOURCE", "")

	cfg, err := Load(path)
	testutil.NoError(t, err)
	testutil.SliceEqual(t, []string{"tag-*", "style-undefined", "field-missing", "format-unknown-field"}, cfg.Diagnostics.Ignore)
	testutil.Equal(t, 2, cfg.Parse.Workers)
	testutil.Equal(t, "shift_jis", cfg.Parse.Charset)
	testutil.Equal(t, "trace", cfg.Logging.Level)
	testutil.Equal(t, "json", cfg.Logging.Format, "file value kept when env unset")
}

func TestLoadEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.yaml")
	testutil.NoError(t, os.WriteFile(path, []byte("colour: red\n"), 0o644))
	t.Setenv(EnvConfig, path)
	_, err := Load("")
	testutil.Error(t, err)
	testutil.True(t, strings.HasPrefix(err.Error(), path), "error names the file: %v", err)
}

func TestLoadBadWorkers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvWorkers, "many")
	_, err := Load("")
	testutil.Error(t, err)
}

func TestDiagnosticConfigRejectsFatal(t *testing.T) {
	cfg := Defaults()
	cfg.Diagnostics.MinSeverity = "fatal"
	_, err := cfg.DiagnosticConfig()
	testutil.Error(t, err)

	cfg = Defaults()
	cfg.Diagnostics.Overrides = map[string]string{"x": "nope"}
	_, err = cfg.DiagnosticConfig()
	testutil.Error(t, err)
}

func TestSchemaIsValidJSON(t *testing.T) {
	testutil.NoError(t, Validate(map[string]any{}))
	testutil.True(t, len(Schema()) > 0, "schema embedded")
}
