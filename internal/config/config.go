package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath       string
	ServerPort   string
	LogLevel     string
	BracketsPath string

	// External wallet services; a rail is disabled when its URL is empty.
	EconomyURL string
	PointsURL  string

	CustomTitleEnabled  bool
	MaxContentLength    int
	MaxNameLength       int
	ForbiddenWords      []string
	CustomPriceMoney    float64
	CustomPricePoints   int
	DynamicPriceMoney   float64
	DynamicPricePoints  int
	DynamicMaxContents  int
	SessionTimeout      time.Duration
	RotationInterval    time.Duration
	DefaultBracketLeft  string
	DefaultBracketRight string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:       getEnv("DB_PATH", "titles.db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		BracketsPath: getEnv("BRACKETS_PATH", "brackets.json"),

		EconomyURL: getEnv("ECONOMY_URL", ""),
		PointsURL:  getEnv("POINTS_URL", ""),

		CustomTitleEnabled:  getBool("CUSTOM_TITLE_ENABLED", true),
		MaxContentLength:    getInt("CUSTOM_TITLE_MAX_LENGTH", 16),
		MaxNameLength:       getInt("CUSTOM_TITLE_MAX_NAME_LENGTH", 12),
		ForbiddenWords:      getList("CUSTOM_TITLE_FORBIDDEN_WORDS", nil),
		CustomPriceMoney:    getFloat("CUSTOM_TITLE_PRICE_MONEY", 1000),
		CustomPricePoints:   getInt("CUSTOM_TITLE_PRICE_POINTS", 0),
		DynamicPriceMoney:   getFloat("DYNAMIC_TITLE_PRICE_MONEY", 5000),
		DynamicPricePoints:  getInt("DYNAMIC_TITLE_PRICE_POINTS", 0),
		DynamicMaxContents:  getInt("DYNAMIC_TITLE_MAX_CONTENTS", 5),
		SessionTimeout:      getDuration("CUSTOM_TITLE_SESSION_TIMEOUT", 60*time.Second),
		RotationInterval:    getDuration("DYNAMIC_TITLE_SWITCH_INTERVAL", 3*time.Second),
		DefaultBracketLeft:  getEnv("DEFAULT_BRACKET_LEFT", "["),
		DefaultBracketRight: getEnv("DEFAULT_BRACKET_RIGHT", "]"),
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("economy_enabled", cfg.EconomyURL != "").
		Bool("points_enabled", cfg.PointsURL != "").
		Dur("session_timeout", cfg.SessionTimeout).
		Dur("rotation_interval", cfg.RotationInterval).
		Msg("configuration loaded")

	return cfg, nil
}

// ContainsForbiddenWord reports whether text contains any configured
// forbidden word, case-insensitively.
func (c *Config) ContainsForbiddenWord(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range c.ForbiddenWords {
		if word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var Module = fx.Provide(Load)
