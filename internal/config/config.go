// Package config holds the settings shared by the example drivers.
package config

import (
	"log/slog"
	"os"
	"strings"

	units "github.com/docker/go-units"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type Window struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type Shaders struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
	Compute  string `toml:"compute"`
}

type Config struct {
	AppName    string  `toml:"app_name"`
	Validation bool    `toml:"validation"`
	GraphDebug bool    `toml:"graph_debug"`
	Window     Window  `toml:"window"`
	Shaders    Shaders `toml:"shaders"`
	// PoolBlockSize is a human readable size such as "64MiB".
	PoolBlockSize string `toml:"pool_block_size"`
	// FrameLimit stops the driver after that many frames, zero runs until closed.
	FrameLimit int    `toml:"frame_limit"`
	LogLevel   string `toml:"log_level"`
}

func Default() *Config {
	return &Config{
		AppName: "cgin",
		Window:  Window{Width: 1280, Height: 720},
		Shaders: Shaders{
			Vertex:   "shaders/vert.spv",
			Fragment: "shaders/frag.spv",
			Compute:  "shaders/comp.spv",
		},
		PoolBlockSize: "64MiB",
		LogLevel:      "info",
	}
}

// Load overlays the TOML file at path on Default. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.FrameLimit < 0 {
		return errors.Errorf("negative frame limit %d", c.FrameLimit)
	}
	if _, err := c.BlockSize(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// BlockSize parses PoolBlockSize, zero when unset.
func (c *Config) BlockSize() (uint64, error) {
	if c.PoolBlockSize == "" {
		return 0, nil
	}
	n, err := units.RAMInBytes(c.PoolBlockSize)
	if err != nil {
		return 0, errors.Wrap(err, "pool_block_size")
	}
	if n <= 0 {
		return 0, errors.Errorf("pool_block_size %q must be positive", c.PoolBlockSize)
	}
	return uint64(n), nil
}

func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return l, errors.Wrap(err, "log_level")
	}
	return l, nil
}

// Logger returns a text logger on stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
