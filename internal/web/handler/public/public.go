// Package public serves the current site settings to ordinary clients.
package public

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/sitesettings/sitesettings/internal/settings/cache"
	"github.com/sitesettings/sitesettings/internal/web/handler"
)

const (
	// Path is the path of the public settings route.
	Path = handler.APIPath + "/settings"
)

// Service is the public settings handler service.
type Service struct {
	handler.Service
	cache *cache.Cache
}

// Init initializes the public settings handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cache == nil {
		return fmt.Errorf("public handler: %s", handler.ErrNilACDFatalLogMsg) //nolint:err113
	}

	s.cache = deps.Cache

	app.Get(Path, s.Get)

	return nil
}

// Get returns every setting value merged over the defaults.
func (s *Service) Get(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-cache")

	return c.JSON(s.cache.Public(c.UserContext()))
}
