// Package maintenance answers public requests with 503 while the maintenance_mode setting is on.
package maintenance

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sitesettings/sitesettings/internal/settings"
)

// Reader is the part of the settings cache the middleware reads.
type Reader interface {
	Bool(ctx context.Context, key string) bool
	String(ctx context.Context, key string) string
}

// Config defines the config for the maintenance middleware.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Settings provides maintenance_mode and maintenance_message.
	//
	// Required.
	Settings Reader

	// Bypass lets a request through during maintenance, e.g. for admins.
	//
	// Optional. Default: nil
	Bypass func(c *fiber.Ctx) bool

	// ExemptPrefixes are path prefixes that are always served.
	//
	// Optional. Default: ConfigDefault.ExemptPrefixes
	ExemptPrefixes []string
}

// ConfigDefault is the default config.
var ConfigDefault = Config{
	ExemptPrefixes: []string{"/api/admin", "/checkalive", "/metrics"},
}

// Response is the body sent during maintenance.
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func configDefault(cfg Config) Config {
	if cfg.ExemptPrefixes == nil {
		cfg.ExemptPrefixes = ConfigDefault.ExemptPrefixes
	}

	return cfg
}

// New creates the maintenance middleware.
func New(config Config) fiber.Handler {
	cfg := configDefault(config)

	if cfg.Settings == nil {
		panic("maintenance: settings reader cannot be nil")
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		for _, prefix := range cfg.ExemptPrefixes {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}

		ctx := c.UserContext()
		if !cfg.Settings.Bool(ctx, settings.KeyMaintenanceMode) {
			return c.Next()
		}

		if cfg.Bypass != nil && cfg.Bypass(c) {
			return c.Next()
		}

		return c.Status(fiber.StatusServiceUnavailable).JSON(Response{
			Error:   "maintenance",
			Message: cfg.Settings.String(ctx, settings.KeyMaintenanceMessage),
		})
	}
}
