// Package logout provides the admin logout route.
package logout

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sitesettings/sitesettings/internal/config"
	"github.com/sitesettings/sitesettings/internal/web/handler"
	"github.com/sitesettings/sitesettings/internal/web/session"
)

const (
	// Path is the path of the logout route.
	Path = handler.AdminAPIPath + "/logout"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	sessions *session.Store
}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.Sessions == nil {
		return fmt.Errorf("logout handler: %s", handler.ErrNilACDFatalLogMsg) //nolint:err113
	}

	s.cfg = deps.Config
	s.sessions = deps.Sessions

	// logout route (outside permission checks)
	app.Post(Path, s.Logout)

	return nil
}

// Logout handles user logout by clearing the session.
func (s *Service) Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(session.CookieName)
	if sessionID != "" {
		if err := s.sessions.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	// Clear the session cookie
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{"success": true})
}
