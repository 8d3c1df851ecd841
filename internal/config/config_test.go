package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.Format.Indent)
	assert.Equal(t, "lower", cfg.Format.KeywordCase)
	assert.Equal(t, 80, cfg.Format.LineWidth)
	assert.False(t, cfg.Format.InlineParameters)
	assert.Equal(t, "127.0.0.1:8094", cfg.Server.Addr())
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playground.yaml")
	content := `
dialect: mysql
timeout: 5s
format:
  keyword_case: upper
  inline_parameters: true
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "upper", cfg.Format.KeywordCase)
	assert.True(t, cfg.Format.InlineParameters)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())

	// Unset keys keep their defaults.
	assert.Equal(t, 2, cfg.Format.Indent)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PLAYGROUND_DIALECT", "sqlite")
	t.Setenv("PLAYGROUND_FORMAT__LINE_WIDTH", "120")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Dialect)
	assert.Equal(t, 120, cfg.Format.LineWidth)
}

func TestLoadFlagsWinOverEnv(t *testing.T) {
	t.Setenv("PLAYGROUND_DIALECT", "sqlite")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "", "")
	flags.Bool("inline", false, "")
	flags.String("keyword-case", "", "")
	require.NoError(t, flags.Set("dialect", "mssql"))
	require.NoError(t, flags.Set("inline", "true"))
	require.NoError(t, flags.Set("keyword-case", "upper"))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "mssql", cfg.Dialect)
	assert.True(t, cfg.Format.InlineParameters)
	assert.Equal(t, "upper", cfg.Format.KeywordCase)
}

func TestUnchangedFlagsAreIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "mysql", "")

	cfg, err := Load("", flags)
	require.NoError(t, err)

	// Flag default differs from config default, but it was never set.
	assert.Equal(t, "postgres", cfg.Dialect)
}

func TestFormatConfigOptions(t *testing.T) {
	f := FormatConfig{Indent: 4, KeywordCase: "upper", LineWidth: 100, InlineParameters: true}
	opts := f.Options()

	assert.Equal(t, core.FormatOptions{
		Indent:           4,
		KeywordCase:      core.KeywordUpper,
		LineWidth:        100,
		InlineParameters: true,
	}, opts)
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}
