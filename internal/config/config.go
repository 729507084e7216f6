package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	PORT            string
	DB_HOST         string
	DB_PORT         string
	DB_USER         string
	DB_PASSWORD     string
	DB_NAME         string
	DATABASE_URL    string
	ES_URL          string
	ES_USER         string
	ES_PASSWORD     string
	JWT_SECRET      string
	TOKEN_TTL_HOURS int
	KAFKA_ADDRESS   string
	LOG_LEVEL       string
	ALLOWED_ORIGINS []string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		PORT:            envDefault("PORT", "8080"),
		DB_HOST:         os.Getenv("DB_HOST"),
		DB_PORT:         envDefault("DB_PORT", "5432"),
		DB_USER:         os.Getenv("DB_USER"),
		DB_PASSWORD:     os.Getenv("DB_PASSWORD"),
		DB_NAME:         os.Getenv("DB_NAME"),
		DATABASE_URL:    os.Getenv("DATABASE_URL"),
		ES_URL:          os.Getenv("ES_URL"),
		ES_USER:         os.Getenv("ES_USER"),
		ES_PASSWORD:     os.Getenv("ES_PASSWORD"),
		JWT_SECRET:      os.Getenv("JWT_SECRET"),
		TOKEN_TTL_HOURS: envIntDefault("TOKEN_TTL_HOURS", 7),
		KAFKA_ADDRESS:   os.Getenv("KAFKA_ADDRESS"),
		LOG_LEVEL:       envDefault("LOG_LEVEL", "info"),
		ALLOWED_ORIGINS: csv(envDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if config.JWT_SECRET == "" {
		log.Printf("Warning: JWT_SECRET is not set, login will refuse to issue tokens")
	}

	return config, nil
}

// DSN builds the postgres connection string. DATABASE_URL wins when present,
// hosted providers hand out a single URL.
func (c *Config) DSN() string {
	if c.DATABASE_URL != "" {
		return c.DATABASE_URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
