package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sitesettings/sitesettings/internal/auth"
	"github.com/sitesettings/sitesettings/internal/config"
	"github.com/sitesettings/sitesettings/internal/settings"
	"github.com/sitesettings/sitesettings/internal/settings/cache"
	"github.com/sitesettings/sitesettings/internal/web/session"
)

// Deps are the collaborators handlers are initialized with.
type Deps struct {
	Config   *config.Config
	Settings *settings.Service
	Cache    *cache.Cache
	Auth     *auth.Service
	Users    *auth.LocalProvider
	Sessions *session.Store
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
