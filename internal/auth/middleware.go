package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	fiberlogger "github.com/sitesettings/sitesettings/internal/logger/adapter/fiber"
	"github.com/sitesettings/sitesettings/internal/web/session"
)

// LocalsUser is the fiber.Locals key holding the *session.Data of the authorized user.
const LocalsUser = "user"

// errorBody is the JSON body of a rejected request.
func errorBody(msg string) fiber.Map {
	return fiber.Map{"error": msg}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
// A missing or invalid session is answered with 401, a missing permission with 403.
func RequirePermission(authService *Service, sessions *session.Store, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionData, err := sessions.Read(c.Cookies(session.CookieName))
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				log.Error().Err(err).Msg("failed to read session")
			}

			return c.Status(fiber.StatusUnauthorized).JSON(errorBody("Unauthorized"))
		}

		hasPermission, err := authService.HasPermission(c.UserContext(), sessionData.UserID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.UserID).Str("permission", permission).
				Msg("failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(errorBody("Internal server error"))
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", sessionData.UserID).Str("permission", permission).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(errorBody("Forbidden"))
		}

		c.Locals(LocalsUser, sessionData)
		c.Locals(fiberlogger.LocalsActor, sessionData.Username)

		return c.Next()
	}
}

// HasPermissionInContext checks if the caller of c has a permission.
// Useful for middleware that only changes behavior for admins.
func HasPermissionInContext(c *fiber.Ctx, authService *Service, sessions *session.Store, permission string) bool {
	sessionData, err := sessions.Read(c.Cookies(session.CookieName))
	if err != nil {
		return false
	}

	hasPermission, err := authService.HasPermission(c.UserContext(), sessionData.UserID, permission)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessionData.UserID).Msg("failed to check permission")
		return false
	}

	return hasPermission
}

// CurrentUser returns the user stored by RequirePermission, or nil.
func CurrentUser(c *fiber.Ctx) *session.Data {
	user, _ := c.Locals(LocalsUser).(*session.Data)
	return user
}
