package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  Server
	Session Session
	Storage Storage
	Events  Events
}

type Server struct {
	Addr      string
	StaticDir string
}

type Session struct {
	TTLMinutes int
}

type Storage struct {
	DatabasePath   string
	MediaDir       string
	UploadsEnabled bool
}

type Events struct {
	// RedisURL selects the redis-stream event publisher when set; empty
	// keeps events in-process.
	RedisURL string
}

// TTL returns the session lifetime as a duration.
func (s Session) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// Load reads the named yaml config (without extension, resolved against the
// config directory) and applies defaults. A missing file is not an error;
// defaults alone give a runnable server.
func Load(filename string) (*Config, error) {
	v := viper.New()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.staticdir", "static")
	v.SetDefault("session.ttlminutes", 1)
	v.SetDefault("storage.databasepath", "datab.db")
	v.SetDefault("storage.mediadir", "media")
	v.SetDefault("storage.uploadsenabled", true)
	v.SetDefault("events.redisurl", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// The session TTL drives ticker cadences as well as expiry; a zero or
	// negative value from a config file must not reach either.
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 1
	}

	return &c, nil
}
