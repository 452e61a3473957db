package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blockreg.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	slugs := make([]string, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		slugs = append(slugs, c.Slug)
	}
	assert.Equal(t, []string{"text", "media", "design", "widgets", "theme", "embed", "reusable"}, slugs)
	assert.Equal(t, map[string]string{"common": "text", "formatting": "text", "layout": "design"}, cfg.LegacyCategories)
	assert.Equal(t, blocktype.DefaultDeprecatedEntryKeys, cfg.Deprecation.EntryKeys)
	assert.Equal(t, "127.0.0.1:8377", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Empty(t, cfg.Path)
}

func TestLoadFile(t *testing.T) {
	t.Run("file_overrides_defaults", func(t *testing.T) {
		path := writeConfig(t, `
[[categories]]
slug = "custom"
title = "Custom"

[[filters]]
match = "acme/*"
priority = 20
category = "custom"
keywords = ["acme"]
supports = { html = false }

[[collections]]
namespace = "acme"
title = "Acme Blocks"

[fallbacks]
default = "core/paragraph"
grouping = "core/group"

[definitions]
paths = ["blocks"]

[server]
read_timeout = "30s"
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, path, cfg.Path)
		require.Len(t, cfg.Categories, 1, "lists are replaced, not appended")
		assert.Equal(t, "custom", cfg.Categories[0].Slug)

		require.Len(t, cfg.Filters, 1)
		assert.Equal(t, "acme/*", cfg.Filters[0].Match)
		require.NotNil(t, cfg.Filters[0].Priority)
		assert.Equal(t, 20, *cfg.Filters[0].Priority)
		assert.Equal(t, []string{"acme"}, cfg.Filters[0].Keywords)
		assert.Equal(t, false, cfg.Filters[0].Supports["html"])

		require.Len(t, cfg.Collections, 1)
		assert.Equal(t, "Acme Blocks", cfg.Collections[0].Title)

		assert.Equal(t, "core/paragraph", cfg.Fallbacks.Default)
		assert.Equal(t, "core/group", cfg.Fallbacks.Grouping)
		assert.Equal(t, []string{"blocks"}, cfg.Definitions.Paths)
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "127.0.0.1:8377", cfg.Server.Addr, "unset keys keep defaults")
	})

	t.Run("missing_explicit_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("malformed_file", func(t *testing.T) {
		_, err := Load(writeConfig(t, "this is = = not toml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})

	t.Run("invalid_filter_rule", func(t *testing.T) {
		_, err := Load(writeConfig(t, "[[filters]]\nmatch = \"\"\n"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})

	t.Run("duplicate_category", func(t *testing.T) {
		_, err := Load(writeConfig(t, "[[categories]]\nslug = \"a\"\n[[categories]]\nslug = \"a\"\n"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("BLOCKREG_SERVER_ADDR", ":9999")
	t.Setenv("BLOCKREG_SERVER_READ_TIMEOUT", "1m")
	t.Setenv("BLOCKREG_DEFINITIONS_PATHS", "a,b")
	t.Setenv("BLOCKREG_LOGGING_VERBOSITY", "2")

	cfg, err := Load(writeConfig(t, "[server]\naddr = \":7000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr, "env wins over the file")
	assert.Equal(t, time.Minute, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"a", "b"}, cfg.Definitions.Paths)
	assert.Equal(t, 2, cfg.Logging.Verbosity)
}

func TestLoadWorkingDirFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("[fallbacks]\nfreeform = \"core/freeform\"\n"), 0644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "core/freeform", cfg.Fallbacks.Freeform)
	assert.Equal(t, DefaultFileName, filepath.Base(cfg.Path))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.addr", envKey("BLOCKREG_SERVER_ADDR"))
	assert.Equal(t, "server.read_timeout", envKey("BLOCKREG_SERVER_READ_TIMEOUT"))
	assert.Equal(t, "logging.verbosity", envKey("BLOCKREG_LOGGING_VERBOSITY"))
}

func TestDefaultContent(t *testing.T) {
	assert.Contains(t, DefaultContent(), "[deprecation]")
}

func TestLoadWithOverrides(t *testing.T) {
	t.Setenv("BLOCKREG_SERVER_ADDR", ":9999")

	cfg, err := LoadWithOverrides(writeConfig(t, "[server]\naddr = \":7000\"\n"), map[string]any{
		"server.addr":       ":8080",
		"definitions.paths": []string{"defs"},
	})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr, "overrides win over env")
	assert.Equal(t, []string{"defs"}, cfg.Definitions.Paths)
}

func TestUserConfigPath(t *testing.T) {
	path := UserConfigPath()
	if path == "" {
		t.Skip("no user config home")
	}
	assert.Equal(t, DefaultFileName, filepath.Base(path))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(path)))
}
