// Package config loads the boardview configuration file.
//
// The file is TOML, read from $XDG_CONFIG_HOME/boardview/config.toml (or
// ~/.config/boardview/config.toml) unless --config names another path. A
// missing default file is not an error; every field has a default.
//
//	[render]
//	px_per_mm = 3.78
//
//	[render.palette]
//	mask = "#1a5f1a"
//	mask_opacity = 0.85
//
//	[marker]
//	slider = 50          # 0..100, overrides size
//	interval_ms = 30
//
//	[cache]
//	backend = "redis"    # none | file | redis | mongo
//	redis_url = "redis://localhost:6379/0"
//	ttl = "168h"
//
//	[server]
//	addr = "127.0.0.1:8080"
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/boardview/pkg/cache"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/pipeline"
	"github.com/matzehuels/boardview/pkg/render"
)

// AppName names the config and cache directories.
const AppName = "boardview"

// DefaultAddr is the viewer server's listen address.
const DefaultAddr = "127.0.0.1:8080"

// Config is the whole configuration file.
type Config struct {
	Render RenderConfig `toml:"render"`
	Marker MarkerConfig `toml:"marker"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig controls board rendering.
type RenderConfig struct {
	PxPerMM float64        `toml:"px_per_mm"`
	Palette render.Palette `toml:"palette"`
}

// MarkerConfig controls the highlight markers.
type MarkerConfig struct {
	// Size is the marker base size. Slider, when set, takes precedence.
	Size       float64         `toml:"size"`
	Slider     *float64        `toml:"slider"`
	IntervalMS int             `toml:"interval_ms"`
	Style      highlight.Style `toml:"style"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	TTL             Duration `toml:"ttl"`
	Namespace       string   `toml:"namespace"`
	RedisURL        string   `toml:"redis_url"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// ServerConfig controls the viewer server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the config file at path, applies defaults and validates the
// result. An empty path means DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	switch {
	case os.IsNotExist(err) && !explicit:
		return Default(), nil
	case os.IsNotExist(err):
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file does not exist: %s", path)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Render.PxPerMM == 0 {
		c.Render.PxPerMM = render.DefaultPxPerMM
	}
	// A partial palette inherits the remaining colors.
	def := render.DefaultPalette()
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	p := &c.Render.Palette
	fill(&p.Background, def.Background)
	fill(&p.Outline, def.Outline)
	fill(&p.Copper, def.Copper)
	fill(&p.Mask, def.Mask)
	fill(&p.Pads, def.Pads)
	fill(&p.Silk, def.Silk)
	if p.MaskOpacity == 0 {
		p.MaskOpacity = def.MaskOpacity
	}

	if c.Marker.Size == 0 {
		c.Marker.Size = highlight.DefaultBaseSize
	}
	if c.Marker.IntervalMS == 0 {
		c.Marker.IntervalMS = int(highlight.DefaultInterval / time.Millisecond)
	}
	ds := highlight.DefaultStyle()
	s := &c.Marker.Style
	fill(&s.Stroke, ds.Stroke)
	fill(&s.Fill, ds.Fill)
	fill(&s.Label, ds.Label)
	if s.StrokeWidth == 0 {
		s.StrokeWidth = ds.StrokeWidth
	}
	if s.FillOpacity == 0 {
		s.FillOpacity = ds.FillOpacity
	}
	if s.FontSize == 0 {
		s.FontSize = ds.FontSize
	}
	s.LabelOffset = ds.LabelOffset

	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = pipeline.DefaultTTL
	}
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = AppName + ":"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// Validate checks value ranges and backend settings.
func (c *Config) Validate() error {
	if err := c.PipelineOptions().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "[render]")
	}

	if c.Marker.Slider != nil {
		if v := *c.Marker.Slider; v < 0 || v > 100 || math.IsNaN(v) {
			return errors.New(errors.ErrCodeInvalidInput, "[marker] slider %v outside 0..100", v)
		}
	}
	if c.Marker.Size < 0 || math.IsNaN(c.Marker.Size) || math.IsInf(c.Marker.Size, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "[marker] invalid size %v", c.Marker.Size)
	}
	if c.Marker.IntervalMS < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "[marker] interval_ms must be positive")
	}

	p, st := c.Render.Palette, c.Marker.Style
	colors := []struct{ key, value string }{
		{"[render.palette] background", p.Background},
		{"[render.palette] outline", p.Outline},
		{"[render.palette] copper", p.Copper},
		{"[render.palette] mask", p.Mask},
		{"[render.palette] pads", p.Pads},
		{"[render.palette] silk", p.Silk},
		{"[marker.style] stroke", st.Stroke},
		{"[marker.style] fill", st.Fill},
		{"[marker.style] label", st.Label},
	}
	for _, col := range colors {
		if strings.ContainsAny(col.value, "\"'<>&;") {
			return errors.New(errors.ErrCodeInvalidInput, "%s: invalid color %q", col.key, col.value)
		}
	}

	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "[cache] backend redis requires redis_url")
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "[cache] backend mongo requires mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "[cache] unknown backend %q (must be one of: none, file, redis, mongo)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "[cache] negative ttl")
	}
	return nil
}

// MarkerSize returns the configured base size, derived from the slider
// position when one is set.
func (c *Config) MarkerSize() float64 {
	if c.Marker.Slider != nil {
		return highlight.SizeFromSlider(*c.Marker.Slider)
	}
	return c.Marker.Size
}

// Interval returns the marker animation tick interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Marker.IntervalMS) * time.Millisecond
}

// CacheOptions returns the backend selection for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             c.Cache.Dir,
		Namespace:       c.Cache.Namespace,
		RedisURL:        c.Cache.RedisURL,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// PipelineOptions returns the render options for a pipeline.Runner.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		PxPerMM: c.Render.PxPerMM,
		Palette: c.Render.Palette,
		TTL:     c.Cache.TTL.Duration,
	}
}
