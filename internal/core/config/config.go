package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

// Production gates the Secure flag on session cookies.
func (a App) Production() bool { return strings.EqualFold(a.Env, "production") }

type Log struct {
	Level  string
	JSON   bool
	File   string
	MaxMB  int
	Backup int
}

type JWT struct {
	Secret   string
	Issuer   string
	TTLHours int
}

type Redis struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	TTLHours  int    `mapstructure:"ttlHours"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

type NATS struct {
	URL     string
	Subject string
	Queue   string
	Stream  string
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	DB    DB
	Redis Redis `mapstructure:"redis"`
	NATS  NATS  `mapstructure:"nats"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "estate-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.maxMB", 100)
	v.SetDefault("log.backup", 5)

	v.SetDefault("jwt.issuer", "estate-api")
	v.SetDefault("jwt.ttlHours", 7*24)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:estate.db?_foreign_keys=on")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.ttlHours", 24)
	v.SetDefault("redis.keyPrefix", "estate:event:")

	v.SetDefault("nats.subject", "clerk.user.*")
	v.SetDefault("nats.queue", "estate-api")
	v.SetDefault("nats.stream", "CLERK")
}

// Load reads an optional YAML file and overlays the environment. Besides the
// APP_ prefixed keys (APP_DB_DSN, ...), the conventional DATABASE_URL,
// JWT_SECRET, APP_ENV and PORT variables are honoured.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindings := map[string][]string{
		"db.dsn":        {"DATABASE_URL"},
		"db.driver":     {"DB_DRIVER"},
		"jwt.secret":    {"JWT_SECRET"},
		"jwt.ttlHours":  {"JWT_TTL_HOURS"},
		"app.env":       {"APP_ENV", "GO_ENV"},
		"app.http.port": {"PORT"},
		"redis.addr":    {"REDIS_ADDR"},
		"nats.url":      {"NATS_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if c.App.Production() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.JWT.Secret = "dev-secret-change-me"
	}
	if c.JWT.TTLHours <= 0 {
		return errors.New("config: jwt.ttlHours must be positive")
	}
	if c.App.HTTP.Port <= 0 {
		return errors.New("config: port must be positive")
	}
	return nil
}
