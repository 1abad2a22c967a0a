// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/bot"
	"github.com/Luckmuc/TicTacToe/internal/game"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidMode     = errors.New("invalid matchmaking mode")
	ErrInvalidStrategy = errors.New("invalid bot strategy")
	ErrInvalidDuration = errors.New("durations must be positive")
	ErrInvalidLevel    = errors.New("parkour.maxLevel must be at least 1")
	ErrInvalidFormat   = errors.New("log.format must be text or json")
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MatchmakingConfig struct {
	Mode       string        `yaml:"mode"`
	StaleAfter time.Duration `yaml:"staleAfter"`
	SweepEvery time.Duration `yaml:"sweepEvery"`
}

type GameConfig struct {
	BotDelay    time.Duration `yaml:"botDelay"`
	SeriesDelay time.Duration `yaml:"seriesDelay"`
	BotStrategy string        `yaml:"botStrategy"`
}

type ParkourConfig struct {
	MaxLevel int `yaml:"maxLevel"`
}

// RedisConfig enables the Redis results list when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	List     string `yaml:"list"`
	Keep     int64  `yaml:"keep"`
}

// DatabaseConfig enables the Postgres results table when URL is set.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type WSConfig struct {
	OutBuffer int `yaml:"outBuffer"`
}

// Config is the full server configuration.
type Config struct {
	Addr        string            `yaml:"addr"`
	Log         LogConfig         `yaml:"log"`
	Matchmaking MatchmakingConfig `yaml:"matchmaking"`
	Game        GameConfig        `yaml:"game"`
	Parkour     ParkourConfig     `yaml:"parkour"`
	Redis       RedisConfig       `yaml:"redis"`
	Database    DatabaseConfig    `yaml:"database"`
	WS          WSConfig          `yaml:"ws"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	g := game.DefaultConfig()
	return Config{
		Addr: ":6575",
		Log:  LogConfig{Level: "info", Format: "text"},
		Matchmaking: MatchmakingConfig{
			Mode:       string(g.Mode),
			StaleAfter: g.StaleAfter,
			SweepEvery: g.SweepEvery,
		},
		Game: GameConfig{
			BotDelay:    g.BotDelay,
			SeriesDelay: g.SeriesDelay,
			BotStrategy: bot.StrategyHeuristic,
		},
		Parkour: ParkourConfig{MaxLevel: g.ParkourMaxLevel},
		Redis:   RedisConfig{List: "tictactoe:results", Keep: 100},
		WS:      WSConfig{OutBuffer: 32},
	}
}

// Load layers an optional YAML file and then the environment over the
// defaults, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = d
		return nil
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		c.Addr = ":" + port
	}
	str("TICTACTOE_ADDR", &c.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("MATCHMAKING_MODE", &c.Matchmaking.Mode)
	str("BOT_STRATEGY", &c.Game.BotStrategy)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("RESULTS_LIST", &c.Redis.List)
	str("DATABASE_URL", &c.Database.URL)

	keep := int(c.Redis.Keep)
	errs := []error{
		dur("QUEUE_STALE_AFTER", &c.Matchmaking.StaleAfter),
		dur("QUEUE_SWEEP_EVERY", &c.Matchmaking.SweepEvery),
		dur("BOT_DELAY", &c.Game.BotDelay),
		dur("SERIES_DELAY", &c.Game.SeriesDelay),
		num("PARKOUR_MAX_LEVEL", &c.Parkour.MaxLevel),
		num("REDIS_DB", &c.Redis.DB),
		num("RESULTS_KEEP", &keep),
		num("WS_OUT_BUFFER", &c.WS.OutBuffer),
	}
	c.Redis.Keep = int64(keep)
	return errors.Join(errs...)
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch game.PairingMode(c.Matchmaking.Mode) {
	case game.PairLobby, game.PairDirect:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Matchmaking.Mode)
	}
	if _, err := bot.New(c.Game.BotStrategy); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, c.Game.BotStrategy)
	}
	if c.Matchmaking.StaleAfter <= 0 || c.Matchmaking.SweepEvery <= 0 ||
		c.Game.BotDelay <= 0 || c.Game.SeriesDelay <= 0 {
		return ErrInvalidDuration
	}
	if c.Parkour.MaxLevel < 1 {
		return ErrInvalidLevel
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Log.Format)
	}
	return nil
}

// Registry converts the matchmaking and game sections into registry settings.
func (c Config) Registry() game.Config {
	return game.Config{
		Mode:            game.PairingMode(c.Matchmaking.Mode),
		StaleAfter:      c.Matchmaking.StaleAfter,
		SweepEvery:      c.Matchmaking.SweepEvery,
		BotDelay:        c.Game.BotDelay,
		SeriesDelay:     c.Game.SeriesDelay,
		ParkourMaxLevel: c.Parkour.MaxLevel,
	}
}
