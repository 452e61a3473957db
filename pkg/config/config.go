package config

import (
	"time"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/rules"
)

// Config is the full blockreg configuration.
type Config struct {
	Categories       []blocktype.Category   `koanf:"categories"`
	LegacyCategories map[string]string      `koanf:"legacy_categories"`
	Deprecation      Deprecation            `koanf:"deprecation"`
	Fallbacks        Fallbacks              `koanf:"fallbacks"`
	Definitions      Definitions            `koanf:"definitions"`
	Filters          []rules.Rule           `koanf:"filters"`
	Collections      []blocktype.Collection `koanf:"collections"`
	Server           Server                 `koanf:"server"`
	Logging          Logging                `koanf:"logging"`

	// Path is the configuration file that was loaded, if any.
	Path string `koanf:"-"`
}

// Deprecation configures how deprecation entries are processed.
type Deprecation struct {
	EntryKeys []string `koanf:"entry_keys"`
}

// Fallbacks names the blocks used when nothing more specific applies.
type Fallbacks struct {
	Default      string `koanf:"default"`
	Freeform     string `koanf:"freeform"`
	Unregistered string `koanf:"unregistered"`
	Grouping     string `koanf:"grouping"`
}

// Definitions lists where block definitions are loaded from.
type Definitions struct {
	Paths []string `koanf:"paths"`
}

// Server configures the HTTP view of the registry.
type Server struct {
	Addr        string        `koanf:"addr"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
}

// Logging configures the logger.
type Logging struct {
	Verbosity int    `koanf:"verbosity"`
	File      string `koanf:"file"`
	JSON      bool   `koanf:"json"`
}
