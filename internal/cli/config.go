package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/brickfall/pkg/cache"
	bferrors "github.com/matzehuels/brickfall/pkg/errors"
	"github.com/matzehuels/brickfall/pkg/pipeline"
	"github.com/matzehuels/brickfall/pkg/server"
)

// Config is the optional config.toml. Flags override every value.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	TTL           duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	Prefix        string   `toml:"prefix"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr    string   `toml:"addr"`
	Timeout duration `toml:"timeout"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	Detailed bool     `toml:"detailed"`
}

// duration lets TOML values like "24h" decode into a time.Duration.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Backend:       cache.BackendFile,
			TTL:           duration{cache.DefaultTTL},
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
		Server: ServerConfig{
			Addr:    server.DefaultAddr,
			Timeout: duration{time.Minute},
		},
		Render: RenderConfig{
			Formats: []string{pipeline.FormatSVG},
		},
	}
}

// loadConfig reads the config file at path on top of the defaults. When
// explicit is false a missing file is not an error.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return defaultConfig(), nil
	}
	if err != nil {
		return Config{}, bferrors.Wrap(bferrors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, bferrors.New(bferrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if err := bferrors.ValidateBackend(c.Cache.Backend, cache.Backends); err != nil {
		return err
	}
	if c.Cache.TTL.Duration < 0 {
		return bferrors.New(bferrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return pipeline.ValidateFormats(c.Render.Formats)
}

// cacheConfig converts the file settings into a cache.Config.
func (c Config) cacheConfig(dir string) cache.Config {
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoConfig{
			URI:      c.Cache.MongoURI,
			Database: c.Cache.MongoDatabase,
		},
	}
}

