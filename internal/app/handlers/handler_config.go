package handlers

import (
	"os"
	"strconv"
)

// HandlerConfig centralizes request-handling knobs shared by all handlers.
type HandlerConfig struct {
	MaxPageSize       int
	DefaultPageSize   int
	EnableDebugErrors bool
	Environment       string
}

// NewHandlerConfig builds a config from environment defaults.
func NewHandlerConfig() *HandlerConfig {
	cfg := &HandlerConfig{
		MaxPageSize:     100,
		DefaultPageSize: 20,
		Environment:     "development",
	}
	cfg.loadFromEnv()
	cfg.applyEnvironmentDefaults()
	return cfg
}

func (c *HandlerConfig) loadFromEnv() {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		c.Environment = env
	}
	if v := os.Getenv("MAX_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxPageSize = n
		}
	}
	if v := os.Getenv("DEFAULT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DefaultPageSize = n
		}
	}
}

func (c *HandlerConfig) applyEnvironmentDefaults() {
	switch c.Environment {
	case "production":
		c.EnableDebugErrors = false
	default:
		c.EnableDebugErrors = true
	}
}

// ValidatePageSize clamps a requested page size into the allowed range.
func (c *HandlerConfig) ValidatePageSize(size int) int {
	if size <= 0 {
		return c.DefaultPageSize
	}
	if size > c.MaxPageSize {
		return c.MaxPageSize
	}
	return size
}
