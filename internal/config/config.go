// Package config loads the service configuration from embedded defaults, an
// optional YAML file, and environment variables, in increasing precedence.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const maxConfigFileSize = 1024 * 1024

type Config struct {
	Port      string          `koanf:"port"`
	Storage   StorageConfig   `koanf:"storage"`
	DB        DBConfig        `koanf:"db"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Log       LogConfig       `koanf:"log"`
	Rate      RateConfig      `koanf:"rate"`
}

type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver string `koanf:"driver"`
}

type DBConfig struct {
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
	MaxConns int    `koanf:"max_conns"`
}

// RedisConfig leaves caching and rate limiting off when Host is empty.
type RedisConfig struct {
	Host     string        `koanf:"host"`
	Port     string        `koanf:"port"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

type AnalyticsConfig struct {
	Timezone       string `koanf:"timezone"`
	WeekStart      string `koanf:"week_start"`
	HistoryPeriods int    `koanf:"history_periods"`
	LookbackDays   int    `koanf:"lookback_days"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type RateConfig struct {
	Limit  int           `koanf:"limit"`
	Window time.Duration `koanf:"window"`
}

// sections lists the environment prefixes that map onto config keys.
var sections = map[string]bool{
	"storage":   true,
	"db":        true,
	"redis":     true,
	"jwt":       true,
	"analytics": true,
	"log":       true,
	"rate":      true,
}

// envKey maps DB_HOST to db.host and ANALYTICS_WEEK_START to
// analytics.week_start. Unrelated variables map to "" and are dropped.
func envKey(s string) string {
	lower := strings.ToLower(s)
	if lower == "port" {
		return lower
	}

	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || !sections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

// Load reads .env (if present), the embedded defaults, the file named by
// CONFIG_FILE, and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadWithFile(os.Getenv("CONFIG_FILE"))
}

func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func validPort(p string) bool {
	n, err := strconv.Atoi(p)
	return err == nil && n > 0 && n < 65536
}

func (c *Config) Validate() error {
	var errs []error

	if !validPort(c.Port) {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}

	switch c.Storage.Driver {
	case "postgres":
		if !validPort(c.DB.Port) {
			errs = append(errs, fmt.Errorf("invalid db port %q", c.DB.Port))
		}
		if c.DB.Name == "" || c.DB.User == "" {
			errs = append(errs, errors.New("db name and user are required"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Redis.Enabled() && !validPort(c.Redis.Port) {
		errs = append(errs, fmt.Errorf("invalid redis port %q", c.Redis.Port))
	}

	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("jwt ttl must be positive"))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.WeekStart(); err != nil {
		errs = append(errs, err)
	}
	if c.Analytics.HistoryPeriods < 1 {
		errs = append(errs, errors.New("analytics history periods must be >= 1"))
	}
	if c.Analytics.LookbackDays < 1 {
		errs = append(errs, errors.New("analytics lookback days must be >= 1"))
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log format must be 'json' or 'console', got %q", c.Log.Format))
	}

	if c.Rate.Limit < 0 {
		errs = append(errs, errors.New("rate limit must be >= 0"))
	}

	return errors.Join(errs...)
}

// DSN builds the Postgres connection URL.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     c.DB.Host + ":" + c.DB.Port,
		Path:     "/" + c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}
	return u.String()
}

// Location resolves the analytics timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown analytics timezone %q: %w", c.Analytics.Timezone, err)
	}
	return loc, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekStart parses the configured first day of the week.
func (c *Config) WeekStart() (time.Weekday, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(c.Analytics.WeekStart))]
	if !ok {
		return time.Monday, fmt.Errorf("unknown analytics week start %q", c.Analytics.WeekStart)
	}
	return d, nil
}
