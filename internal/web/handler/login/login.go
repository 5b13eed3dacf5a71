package login

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sitesettings/sitesettings/internal/auth"
	"github.com/sitesettings/sitesettings/internal/config"
	"github.com/sitesettings/sitesettings/internal/web/handler"
	"github.com/sitesettings/sitesettings/internal/web/session"
)

const (
	// Path is the path of the login route.
	Path = handler.AdminAPIPath + "/login"
)

var validate = validator.New()

// Request is the login body.
type Request struct {
	Username string `json:"username" form:"username" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Response is returned after a successful login.
type Response struct {
	Success  bool   `json:"success"`
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	users    *auth.LocalProvider
	sessions *session.Store
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.Users == nil || deps.Sessions == nil {
		return fmt.Errorf("login handler: %s", handler.ErrNilACDFatalLogMsg) //nolint:err113
	}

	s.cfg = deps.Config
	s.users = deps.Users
	s.sessions = deps.Sessions

	app.Post(Path, s.Post)

	return nil
}

// Post handles the login request.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(Request)

	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, ErrInvalidFormData.Error())
	}

	if err := validate.Struct(req); err != nil {
		return handler.BadRequest(c, ErrInvalidFormData.Error())
	}

	user, err := s.users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) ||
			errors.Is(err, auth.ErrInvalidPassword) ||
			errors.Is(err, auth.ErrUserAccountDisabled) {
			log.Warn().Str("username", req.Username).Err(err).Msg("login rejected")

			return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Error: ErrInvalidCredentials.Error()})
		}

		log.Error().Err(err).Msg("failed to authenticate")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: ErrInternalServerError.Error()})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: ErrInternalServerError.Error()})
	}

	if err = s.sessions.Write(sessionID, &session.Data{UserID: user.ID, Username: user.Username}); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: ErrInternalServerError.Error()})
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.sessions.Expiry().Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Str("username", user.Username).Msg("admin logged in")

	return c.JSON(Response{Success: true, UserID: user.ID, Username: user.Username})
}
