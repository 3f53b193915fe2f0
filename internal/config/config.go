package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"voicera-console/pkg/utils"
)

// Config holds all configuration required by the console process.
// Values come from the environment, optionally seeded from a .env file.
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	Backend BackendConfig
	Voice   VoiceConfig
	Session SessionConfig
	Redis   RedisConfig
	Audit   AuditConfig
	DB      DBConfig
}

type AppConfig struct {
	Env         string
	Port        int
	HTTPTimeout time.Duration
}

type BackendConfig struct {
	// PublicURL is the browser-visible backend origin.
	PublicURL string
	// ServerURL is what the console itself dials; defaults to PublicURL.
	ServerURL string
}

type VoiceConfig struct {
	// ServerURL is the public base of the voice server; answer URLs hang off it.
	ServerURL string
}

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type SessionConfig struct {
	Secret       string
	Issuer       string
	TTL          time.Duration
	Store        string
	CookieName   string
	SecureCookie bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type AuditConfig struct {
	Store string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// Load reads ENV_FILE (default .env) when present, then the environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	file := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load %s: %w", file, err)
	}
	return FromEnv()
}

// FromEnv builds and validates a Config from the process environment.
func FromEnv() (Config, error) {
	c := Config{}
	var parseErrs []error
	intVar := func(key string, def int) int {
		n, err := optInt(key, def)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return n
	}
	durVar := func(key string) time.Duration {
		d, err := optDuration(key)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return d
	}

	c.App.Env = env("APP_ENV")
	c.App.Port = intVar("APP_PORT", 8080)
	c.App.HTTPTimeout = durVar("HTTP_TIMEOUT")

	c.Backend.PublicURL = env("BACKEND_PUBLIC_URL")
	c.Backend.ServerURL = env("BACKEND_SERVER_URL")
	c.Voice.ServerURL = env("VOICE_SERVER_URL")

	c.Session.Secret = os.Getenv("SESSION_SECRET")
	c.Session.Issuer = env("SESSION_ISSUER")
	c.Session.TTL = durVar("SESSION_TTL")
	c.Session.Store = strings.ToLower(env("SESSION_STORE"))
	c.Session.CookieName = env("SESSION_COOKIE")

	c.Redis.Host = env("REDIS_HOST")
	c.Redis.Port = intVar("REDIS_PORT", 6379)
	c.Redis.Password = os.Getenv("REDIS_PASSWORD")
	c.Redis.DB = intVar("REDIS_DB", 0)

	c.Audit.Store = strings.ToLower(env("AUDIT_STORE"))

	c.DB.Host = env("DB_HOST")
	c.DB.Port = intVar("DB_PORT", 5432)
	c.DB.User = env("DB_USER")
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = env("DB_NAME")
	c.DB.SSLMode = env("DB_SSLMODE")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate applies defaults and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.HTTPTimeout <= 0 {
		c.App.HTTPTimeout = 30 * time.Second
	}

	if err := validURL("BACKEND_PUBLIC_URL", c.Backend.PublicURL); err != nil {
		errs = append(errs, err)
	}
	if c.Backend.ServerURL == "" {
		c.Backend.ServerURL = c.Backend.PublicURL
	} else if err := validURL("BACKEND_SERVER_URL", c.Backend.ServerURL); err != nil {
		errs = append(errs, err)
	}
	if err := validURL("VOICE_SERVER_URL", c.Voice.ServerURL); err != nil {
		errs = append(errs, err)
	}

	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if c.IsProduction() && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes in production"))
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "voicera-console"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "console_session"
	}
	c.Session.SecureCookie = c.App.Env == "production" || c.App.Env == "staging"
	switch c.Session.Store {
	case "":
		c.Session.Store = StoreMemory
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required when SESSION_STORE=redis"))
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be memory or redis, got %q", c.Session.Store))
	}

	switch c.Audit.Store {
	case "":
		c.Audit.Store = StoreMemory
	case StoreMemory:
	case StorePostgres:
		errs = append(errs, c.validateDB()...)
	default:
		errs = append(errs, fmt.Errorf("AUDIT_STORE must be memory or postgres, got %q", c.Audit.Store))
	}

	return joinErrors(errs)
}

func (c *Config) validateDB() []error {
	var errs []error
	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required when AUDIT_STORE=postgres"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required when AUDIT_STORE=postgres"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required when AUDIT_STORE=postgres"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return utils.PostgresDSN(c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func optInt(key string, def int) (int, error) {
	v := env(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optDuration(key string) (time.Duration, error) {
	v := env(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func validURL(key, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, v)
	}
	return nil
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
