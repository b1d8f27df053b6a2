// Package config loads application settings from, in order of
// precedence: command-line flags, LINGOREPS_* environment variables,
// an optional YAML config file, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "LINGOREPS_"

// Config holds the application settings.
type Config struct {
	DBPath   string `koanf:"db_path" validate:"required"`
	ReposDir string `koanf:"repos_dir" validate:"required"`
	Learner  string `koanf:"learner" validate:"required"`
	DueLimit int    `koanf:"due_limit" validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:   "lingoreps.db",
		ReposDir: "repos",
		Learner:  "default",
		DueLimit: 20,
	}
}

var validate = validator.New()

// Load builds the configuration. configFile may be empty; a missing
// file is only an error when one was explicitly named. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
	}

	e := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		// LINGOREPS_DB_PATH -> db_path
		return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
	})
	if err := k.Load(e, nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		// Flag names use dashes (--db-path); koanf keys use underscores.
		// Only flags the user actually set may override lower layers.
		p := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(p, nil); err != nil {
			return Config{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// FindConfigFile returns the explicitly named file, or lingoreps.yml in
// the working directory if present, or "".
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("lingoreps.yml"); err == nil {
		return "lingoreps.yml"
	}
	return ""
}
