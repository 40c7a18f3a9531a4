package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	StepsCacheTTL   time.Duration
	StepsRateLimit  int
	StepsRateWindow time.Duration
	AutoMigrate     bool
	LogLevel        string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Steps API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("steps.cache_ttl", "2m")
	v.SetDefault("steps.rate_limit", 60)
	v.SetDefault("steps.rate_window", "1m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("log.level", "info")

	cacheTTL, err := parseDuration(v, "steps.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	rateWindow, err := parseDuration(v, "steps.rate_window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		StepsCacheTTL:   cacheTTL,
		StepsRateLimit:  v.GetInt("steps.rate_limit"),
		StepsRateWindow: rateWindow,
		AutoMigrate:     v.GetBool("database.auto_migrate"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.StepsRateLimit <= 0 {
		cfg.StepsRateLimit = 60
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return duration, nil
}
