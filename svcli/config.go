package svcli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/structview/structview/lib/xmain"
)

// Config holds render defaults read from a --config file. Its keys are the
// long flag names. Flags and environment variables take precedence.
type Config struct {
	View            string   `toml:"view" yaml:"view"`
	Format          string   `toml:"format" yaml:"format"`
	Mode            string   `toml:"mode" yaml:"mode"`
	ThemeBase       string   `toml:"theme-base" yaml:"theme-base"`
	Crop            *bool    `toml:"crop" yaml:"crop"`
	HideMetadata    *bool    `toml:"hide-metadata" yaml:"hide-metadata"`
	FilterTags      []string `toml:"filter-tags" yaml:"filter-tags"`
	FilterMode      string   `toml:"filter-mode" yaml:"filter-mode"`
	Perspective     string   `toml:"perspective" yaml:"perspective"`
	Rasterizer      string   `toml:"rasterizer" yaml:"rasterizer"`
	Scale           *int64   `toml:"scale" yaml:"scale"`
	ThumbnailWidth  *int64   `toml:"thumbnail-width" yaml:"thumbnail-width"`
	AnimateInterval *int64   `toml:"animate-interval" yaml:"animate-interval"`
	Host            string   `toml:"host" yaml:"host"`
	Port            string   `toml:"port" yaml:"port"`
	Timeout         *int64   `toml:"timeout" yaml:"timeout"`
}

// ParseConfig decodes b as TOML or YAML depending on the extension of path.
func ParseConfig(path string, b []byte) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(b)).Decode(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q in config %s", undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s must be .toml, .yaml or .yml", path)
	}
	return cfg, nil
}

func loadConfig(ms *xmain.State, path string) (*Config, error) {
	b, err := ms.ReadPath(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(path, b)
}

// values lists the config as flag values, keyed by long flag name.
func (cfg *Config) values() map[string]string {
	m := make(map[string]string)
	str := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	boolean := func(k string, v *bool) {
		if v != nil {
			m[k] = strconv.FormatBool(*v)
		}
	}
	integer := func(k string, v *int64) {
		if v != nil {
			m[k] = strconv.FormatInt(*v, 10)
		}
	}
	str("view", cfg.View)
	str("format", cfg.Format)
	str("mode", cfg.Mode)
	str("theme-base", cfg.ThemeBase)
	boolean("crop", cfg.Crop)
	boolean("hide-metadata", cfg.HideMetadata)
	if len(cfg.FilterTags) > 0 {
		m["filter-tags"] = strings.Join(cfg.FilterTags, ",")
	}
	str("filter-mode", cfg.FilterMode)
	str("perspective", cfg.Perspective)
	str("rasterizer", cfg.Rasterizer)
	integer("scale", cfg.Scale)
	integer("thumbnail-width", cfg.ThumbnailWidth)
	integer("animate-interval", cfg.AnimateInterval)
	str("host", cfg.Host)
	str("port", cfg.Port)
	integer("timeout", cfg.Timeout)
	return m
}

// apply sets every flag the config names unless the flag was given on the
// command line or through its environment variable.
func (cfg *Config) apply(flags *pflag.FlagSet, fromEnv func(flag string) bool) error {
	for name, v := range cfg.values() {
		if flags.Lookup(name) == nil {
			return fmt.Errorf("config key %q is not a flag", name)
		}
		if flags.Changed(name) || fromEnv(name) {
			continue
		}
		if err := flags.Set(name, v); err != nil {
			return fmt.Errorf("invalid config value for %s: %w", name, err)
		}
	}
	return nil
}
