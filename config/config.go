// Package config holds the options of the C emitter.
package config

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

type Config struct {
	// Names of the three output streams, relative to the output directory.
	HeaderFile  string `mapstructure:"header_file"`
	BodyFile    string `mapstructure:"body_file"`
	DefaultFile string `mapstructure:"default_file"`

	Verbose bool `mapstructure:"verbose"`

	// EmitIO enables the per-type read/write routines.
	EmitIO bool `mapstructure:"emit_io"`
	// EmitConfigVars enables the command-line parsing routines of enums.
	EmitConfigVars bool `mapstructure:"emit_config_vars"`
}

const EnvPrefix = "CTYPE"

func SetDefaults(v *viper.Viper) {
	v.SetDefault("header_file", "_types.h")
	v.SetDefault("body_file", "_types.c")
	v.SetDefault("default_file", "_types.default")
	v.SetDefault("verbose", false)
	v.SetDefault("emit_io", true)
	v.SetDefault("emit_config_vars", true)
}

// Default is the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// New returns a viper instance with defaults and CTYPE_ environment
// overrides bound.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// ReadFile merges the configuration file at path into v. The file type is
// taken from the extension and defaults to TOML.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("toml")
	}
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	return nil
}

// Load reads the configuration file at path, if any, on top of the defaults
// and the environment.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		if err := ReadFile(v, path); err != nil {
			return nil, err
		}
	}
	return LoadWithViper(v)
}
