// Package config loads xkcdify configuration files.
//
// A configuration file is TOML. The [sketch] table holds options applied to
// every run; each [presets.<name>] table overrides them for runs that ask for
// that preset. Keys match the JSON names of [pipeline.Options].
//
//	cache = "~/.cache/xkcdify"
//
//	[server]
//	addr = ":8080"
//
//	[sketch]
//	max_segment_length = "2mm"
//	seed = 7
//
//	[presets.subtle]
//	scale = 1
//	wavelength = 24
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/pipeline"
)

const appName = "xkcdify"

// Server holds HTTP server settings.
type Server struct {
	Addr         string   `toml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	Timeout      Duration `toml:"timeout"`
	KeyPrefix    string   `toml:"key_prefix"` // cache key namespace
}

// Server defaults.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 10 << 20
	DefaultTimeout      = 30 * time.Second
)

// Duration is a time.Duration written as a string such as "30s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is a loaded configuration file.
type Config struct {
	// Cache is a cache backend spec, see cache.ParseBackend. A leading "~/"
	// is expanded.
	Cache string

	Server Server

	// Path is the file the configuration was read from, if any.
	Path string

	sketch  pipeline.Options
	presets map[string]pipeline.Options
}

type rawConfig struct {
	Cache   string                    `toml:"cache"`
	Server  Server                    `toml:"server"`
	Sketch  toml.Primitive            `toml:"sketch"`
	Presets map[string]toml.Primitive `toml:"presets"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
			Timeout:      Duration{DefaultTimeout},
		},
		sketch:  pipeline.DefaultOptions(),
		presets: map[string]pipeline.Options{},
	}
}

// Load reads a configuration file. Unknown keys are an error so that typos
// do not go unnoticed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadDefault reads the file at [DefaultPath] if it exists and returns
// [Default] otherwise.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes configuration from TOML text.
func Parse(text string) (*Config, error) {
	var raw rawConfig
	raw.Server = Default().Server
	md, err := toml.Decode(text, &raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml")
	}

	cfg := &Config{
		Cache:   expandHome(raw.Cache),
		Server:  raw.Server,
		sketch:  pipeline.DefaultOptions(),
		presets: make(map[string]pipeline.Options, len(raw.Presets)),
	}
	if md.IsDefined("sketch") {
		if err := md.PrimitiveDecode(raw.Sketch, &cfg.sketch); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "[sketch]")
		}
	}
	for name, prim := range raw.Presets {
		opts := cfg.sketch
		opts.Select = append([]string(nil), cfg.sketch.Select...)
		if err := md.PrimitiveDecode(prim, &opts); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "[presets.%s]", name)
		}
		cfg.presets[name] = opts
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	check := func(where string, o pipeline.Options) error {
		if err := o.ValidateAndSetDefaults(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "%s", where)
		}
		return nil
	}
	if err := check("[sketch]", c.sketch); err != nil {
		return err
	}
	for _, name := range c.PresetNames() {
		if err := check("[presets."+name+"]", c.presets[name]); err != nil {
			return err
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if c.Server.Timeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.timeout must be positive")
	}
	return nil
}

// Options returns the options for a preset, or the [sketch] table when
// preset is empty.
func (c *Config) Options(preset string) (pipeline.Options, error) {
	if preset == "" {
		return c.sketch, nil
	}
	opts, ok := c.presets[preset]
	if !ok {
		return pipeline.Options{}, errors.New(errors.ErrCodeNotFound,
			"unknown preset %q (have: %s)", preset, strings.Join(c.PresetNames(), ", "))
	}
	return opts, nil
}

// PresetNames returns the preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.presets))
	for name := range c.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPath returns the configuration file location using the XDG standard
// (~/.config/xkcdify/config.toml).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/xkcdify/).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
