package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFileName is looked up in the working directory when no file is given.
const DefaultFileName = "blockreg.toml"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "BLOCKREG_"

// AppName names the per-user config directory.
const AppName = "blockreg"

// Load builds the configuration. An explicit path must exist; without one,
// blockreg.toml in the working directory is used when present, then
// $XDG_CONFIG_HOME/blockreg/blockreg.toml.
func Load(path string) (*Config, error) {
	return load(path, true, nil)
}

// LoadWithOverrides is Load with a final layer of dotted keys, such as
// "server.addr", typically taken from command line flags.
func LoadWithOverrides(path string, overrides map[string]any) (*Config, error) {
	return load(path, true, overrides)
}

// Default returns the configuration built from the embedded defaults only.
func Default() (*Config, error) {
	return load("", false, nil)
}

func load(path string, layered bool, overrides map[string]any) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Config file
	configPath := ""
	if layered {
		resolved, err := resolvePath(path)
		if err != nil {
			return nil, err
		}
		configPath = resolved
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", configPath).
				WithDetail(errors.DetailPath, configPath)
		}
		logger.Debug().Str("path", configPath).Msg("Loaded config file")
	}

	// 3. Env vars
	if layered {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	cfg.Path = configPath

	// 6. Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s is not readable", path).
				WithDetail(errors.DetailPath, path)
		}
		return path, nil
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		abs, err := filepath.Abs(DefaultFileName)
		if err != nil {
			return DefaultFileName, nil
		}
		return abs, nil
	}
	if userPath := UserConfigPath(); userPath != "" {
		if _, err := os.Stat(userPath); err == nil {
			return userPath, nil
		}
	}
	return "", nil
}

// UserConfigPath returns the per-user config file location.
func UserConfigPath() string {
	if xdg.ConfigHome == "" {
		return ""
	}
	return filepath.Join(xdg.ConfigHome, AppName, DefaultFileName)
}

// envKey maps BLOCKREG_SERVER_READ_TIMEOUT to server.read_timeout: the first
// underscore separates the section from the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// Validate checks the values the rest of blockreg relies on.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Slug == "" {
			return errors.Newf(errors.ErrConfigParse, "category %d has an empty slug", i)
		}
		if seen[cat.Slug] {
			return errors.Newf(errors.ErrConfigParse, "category %q is declared twice", cat.Slug)
		}
		seen[cat.Slug] = true
	}
	for i, r := range c.Filters {
		if err := r.Validate(); err != nil {
			return errors.Wrapf(err, errors.ErrConfigParse, "filter %d is invalid", i)
		}
	}
	for i, col := range c.Collections {
		if col.Namespace == "" {
			return errors.Newf(errors.ErrConfigParse, "collection %d has an empty namespace", i)
		}
	}
	return nil
}
