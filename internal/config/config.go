package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/observability/log"
)

// Environment overrides, applied after the file and any .env file.
const (
	EnvListenAddr   = "ARENA_LISTEN_ADDR"
	EnvLogLevel     = "ARENA_LOG_LEVEL"
	EnvSeed         = "ARENA_SEED"
	EnvBestTimePath = "ARENA_BEST_TIME_PATH"
)

// Config is the whole application configuration.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	LogLevel     string `yaml:"log_level"`
	Seed         uint64 `yaml:"seed"` // 0 picks a time-based seed
	BestTimePath string `yaml:"best_time_path"`

	Arena  ArenaConfig  `yaml:"arena"`
	Driver DriverConfig `yaml:"driver"`
	Server ServerConfig `yaml:"server"`
}

type ArenaConfig struct {
	Width          float64           `yaml:"width"`
	Height         float64           `yaml:"height"`
	BaseSpeed      float64           `yaml:"base_speed"`
	SpeedCap       float64           `yaml:"speed_cap"`
	MaxManualSpeed float64           `yaml:"max_manual_speed"`
	Deadband       float64           `yaml:"deadband"`
	RampEveryTicks int               `yaml:"ramp_every_ticks"`
	TrailLength    int               `yaml:"trail_length"`
	Separation     SeparationConfig  `yaml:"separation"`
	Layout         []PlacementConfig `yaml:"layout"`
}

type SeparationConfig struct {
	RestMultiplier    float64 `yaml:"rest_multiplier"`
	BoxForce          float64 `yaml:"box_force"`
	CircleForce       float64 `yaml:"circle_force"`
	CoincidentEpsilon float64 `yaml:"coincident_epsilon"`
	JitterRange       float64 `yaml:"jitter_range"`
}

type PlacementConfig struct {
	Role   string   `yaml:"role"`
	Kind   string   `yaml:"kind"`
	X      float64  `yaml:"x"`
	Y      float64  `yaml:"y"`
	Size   float64  `yaml:"size,omitempty"`
	Radius float64  `yaml:"radius,omitempty"`
	Color  [3]uint8 `yaml:"color,flow"`
	Target string   `yaml:"target,omitempty"`
}

// DriverConfig holds the timer periods of the simulation loop.
type DriverConfig struct {
	ClockPeriod time.Duration `yaml:"clock_period"`
	FramePeriod time.Duration `yaml:"frame_period"`
	EndedDelay  time.Duration `yaml:"ended_delay"`
	InboxSize   int           `yaml:"inbox_size"`
}

type ServerConfig struct {
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PingPeriod     time.Duration `yaml:"ping_period"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

// Default returns the stock configuration.
func Default() Config {
	ac := arena.DefaultConfig()
	return Config{
		ListenAddr:   "127.0.0.1:8080",
		LogLevel:     "info",
		BestTimePath: "best_time.yaml",
		Arena:        fromArena(ac),
		Driver: DriverConfig{
			ClockPeriod: time.Second,
			FramePeriod: 33 * time.Millisecond,
			EndedDelay:  3 * time.Second,
			InboxSize:   256,
		},
		Server: ServerConfig{
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   5 * time.Second,
			PingPeriod:     5 * time.Second,
			MaxMessageSize: 4096,
		},
	}
}

// Load reads path on top of Default. An empty path returns the defaults.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	if err = Decode(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Decode unmarshals YAML into cfg, keeping fields the document omits.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "load %s", p)
		}
	}
	return nil
}

// ApplyEnv overrides fields from lookup, normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvBestTimePath); ok {
		c.BestTimePath = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%s=%q is not an unsigned integer", EnvSeed, v)
		}
		c.Seed = seed
	}
	return nil
}

// Validate checks the settings the arena does not validate itself.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.Wrap(ErrInvalidConfig, "listen_addr is empty")
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return errors.Wrapf(ErrInvalidConfig, "unknown log level %q", c.LogLevel)
	}
	if c.Driver.ClockPeriod <= 0 || c.Driver.FramePeriod <= 0 || c.Driver.EndedDelay <= 0 {
		return errors.Wrap(ErrInvalidConfig, "driver periods must be positive")
	}
	if c.Driver.InboxSize <= 0 {
		return errors.Wrap(ErrInvalidConfig, "driver inbox_size must be positive")
	}
	if c.Server.PingPeriod <= 0 || c.Server.ReadTimeout <= c.Server.PingPeriod {
		return errors.Wrap(ErrInvalidConfig, "server read_timeout must exceed a positive ping_period")
	}
	if c.Server.MaxMessageSize <= 0 {
		return errors.Wrap(ErrInvalidConfig, "server max_message_size must be positive")
	}
	ac, err := c.ArenaConfig()
	if err != nil {
		return err
	}
	if err = ac.Validate(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() log.Level {
	l, _ := log.ParseLevel(c.LogLevel)
	return l
}

// ArenaConfig converts the file layout into the simulation config.
func (c Config) ArenaConfig() (arena.Config, error) {
	a := c.Arena
	layout := make([]arena.Placement, 0, len(a.Layout))
	for i, p := range a.Layout {
		kind, ok := arena.ParseKind(p.Kind)
		if !ok {
			return arena.Config{}, errors.Wrapf(ErrInvalidConfig, "layout[%d] %q: unknown kind %q", i, p.Role, p.Kind)
		}
		layout = append(layout, arena.Placement{
			Role:   p.Role,
			Kind:   kind,
			X:      p.X,
			Y:      p.Y,
			Size:   p.Size,
			Radius: p.Radius,
			Color:  arena.Color{R: p.Color[0], G: p.Color[1], B: p.Color[2]},
			Target: p.Target,
		})
	}
	return arena.Config{
		Width:          a.Width,
		Height:         a.Height,
		BaseSpeed:      a.BaseSpeed,
		SpeedCap:       a.SpeedCap,
		MaxManualSpeed: a.MaxManualSpeed,
		Deadband:       a.Deadband,
		RampEveryTicks: a.RampEveryTicks,
		TrailLength:    a.TrailLength,
		Separation: arena.SeparationParams{
			RestMultiplier:    a.Separation.RestMultiplier,
			BoxForce:          a.Separation.BoxForce,
			CircleForce:       a.Separation.CircleForce,
			CoincidentEpsilon: a.Separation.CoincidentEpsilon,
			JitterRange:       a.Separation.JitterRange,
		},
		Layout: layout,
	}, nil
}

func fromArena(ac arena.Config) ArenaConfig {
	layout := make([]PlacementConfig, len(ac.Layout))
	for i, p := range ac.Layout {
		layout[i] = PlacementConfig{
			Role:   p.Role,
			Kind:   p.Kind.String(),
			X:      p.X,
			Y:      p.Y,
			Size:   p.Size,
			Radius: p.Radius,
			Color:  [3]uint8{p.Color.R, p.Color.G, p.Color.B},
			Target: p.Target,
		}
	}
	return ArenaConfig{
		Width:          ac.Width,
		Height:         ac.Height,
		BaseSpeed:      ac.BaseSpeed,
		SpeedCap:       ac.SpeedCap,
		MaxManualSpeed: ac.MaxManualSpeed,
		Deadband:       ac.Deadband,
		RampEveryTicks: ac.RampEveryTicks,
		TrailLength:    ac.TrailLength,
		Separation: SeparationConfig{
			RestMultiplier:    ac.Separation.RestMultiplier,
			BoxForce:          ac.Separation.BoxForce,
			CircleForce:       ac.Separation.CircleForce,
			CoincidentEpsilon: ac.Separation.CoincidentEpsilon,
			JitterRange:       ac.Separation.JitterRange,
		},
		Layout: layout,
	}
}
