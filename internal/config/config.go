package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Session struct {
		Secret     string
		TTLMinutes int
		Secure     bool
	}
	Store struct {
		Driver string
	}
	Database struct {
		Path string
	}
	Auth struct {
		SubmitDelayMS int
	}
	CORS struct {
		AllowOrigins []string
	}
	Janitor struct {
		IntervalSeconds int
	}
	Log struct {
		Level string
	}
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c Config) SubmitDelay() time.Duration {
	return time.Duration(c.Auth.SubmitDelayMS) * time.Millisecond
}

func (c Config) JanitorInterval() time.Duration {
	return time.Duration(c.Janitor.IntervalSeconds) * time.Second
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("session secret is required")
	}
	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session ttl must be positive, got %d", c.Session.TTLMinutes)
	}
	if c.Auth.SubmitDelayMS < 0 {
		return fmt.Errorf("auth submit delay must not be negative, got %d", c.Auth.SubmitDelayMS)
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := newViper()
	_ = v.ReadInConfig() // optional file

	return decode(v)
}

// Watch calls onChange with the reloaded configuration whenever the config file changes,
// and onError when the changed file cannot be decoded.
// It returns an error when there is no config file to watch.
func Watch(onChange func(Config), onError func(error)) error {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		reload(v, onChange, onError)
	})
	v.WatchConfig()
	return nil
}

func reload(v *viper.Viper, onChange func(Config), onError func(error)) {
	cfg, err := decode(v)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	onChange(cfg)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("JAVINITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttlminutes", 120)
	v.SetDefault("session.secure", false)
	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("database.path", "data/javinity.db")
	v.SetDefault("auth.submitdelayms", 1000)
	v.SetDefault("cors.alloworigins", []string{"*"})
	v.SetDefault("janitor.intervalseconds", 60)
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	return cfg, nil
}

// loadDotEnv copies variables from an optional .env file into the process environment.
// Variables already set win.
func loadDotEnv() {
	env := viper.New()
	env.SetConfigFile(".env")
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return
	}

	for _, key := range env.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); !exists {
			_ = os.Setenv(name, env.GetString(key))
		}
	}
}
