// Package settings provides the admin JSON API for site settings.
package settings

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sitesettings/sitesettings/internal/auth"
	"github.com/sitesettings/sitesettings/internal/config"
	sitesettings "github.com/sitesettings/sitesettings/internal/settings"
	"github.com/sitesettings/sitesettings/internal/web/handler"
)

const (
	// Path is the route group of the settings admin API.
	Path = handler.AdminAPIPath + "/settings"
)

// Service is the settings admin handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	settings *sitesettings.Service
}

// ListResponse is returned by the list route.
type ListResponse struct {
	Settings   []sitesettings.Setting            `json:"settings"`
	Categories map[string][]sitesettings.Setting `json:"categories"`
}

// UpdateRequest is the body of the update route.
// ExpectedVersion is optional and comes from an earlier read of the same setting.
// A JSON null Value is accepted for image settings only, where it removes the image.
// Boolean and text settings reject it with 400.
type UpdateRequest struct {
	Value           json.RawMessage `json:"value"`
	ExpectedVersion *int            `json:"expected_version,omitempty"`
}

// MutationResponse is returned by the update and rollback routes.
type MutationResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Setting *sitesettings.Setting `json:"setting"`
}

// HistoryResponse is returned by the history route.
type HistoryResponse struct {
	Setting *sitesettings.Setting       `json:"setting"`
	History []sitesettings.HistoryEntry `json:"history"`
}

// Init initializes the settings admin handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.Settings == nil {
		return fmt.Errorf("settings handler: %s", handler.ErrNilACDFatalLogMsg) //nolint:err113
	}

	s.cfg = deps.Config
	s.settings = deps.Settings

	view := auth.RequirePermission(deps.Auth, deps.Sessions, auth.PermSettingsView)
	update := auth.RequirePermission(deps.Auth, deps.Sessions, auth.PermSettingsUpdate)
	rollback := auth.RequirePermission(deps.Auth, deps.Sessions, auth.PermSettingsRollback)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, view, s.List)
		router.Get("/history/:key", view, s.History)
		router.Post("/rollback/:key/:version", rollback, s.Rollback)
		router.Get("/:key", view, s.Get)
		router.Put("/:key", update, s.Update)
	})

	return nil
}

// List returns all settings, also grouped by category.
func (s *Service) List(c *fiber.Ctx) error {
	list, err := s.settings.List(c.UserContext())
	if err != nil {
		return handler.Error(c, err)
	}

	categories := make(map[string][]sitesettings.Setting)
	for _, item := range list {
		categories[item.Category] = append(categories[item.Category], item)
	}

	return c.JSON(ListResponse{Settings: list, Categories: categories})
}

// Get returns one setting without history.
func (s *Service) Get(c *fiber.Ctx) error {
	item, err := s.settings.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(item)
}

// History returns a setting and its history, newest first.
// The response is cut to the configured history limit, stored history is never truncated.
func (s *Service) History(c *fiber.Ctx) error {
	item, err := s.settings.GetWithHistory(c.UserContext(), c.Params("key"))
	if err != nil {
		return handler.Error(c, err)
	}

	history := item.History
	if limit := s.cfg.Settings.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[:limit]
	}

	item.History = nil

	return c.JSON(HistoryResponse{Setting: item, History: history})
}

// Update writes a new value.
func (s *Service) Update(c *fiber.Ctx) error {
	var req UpdateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return handler.BadRequest(c, "Invalid request body")
	}

	if len(req.Value) == 0 {
		return handler.BadRequest(c, "Value is required")
	}

	expected := sitesettings.NoExpectedVersion
	if req.ExpectedVersion != nil {
		if *req.ExpectedVersion < 1 {
			return handler.BadRequest(c, "expected_version must be positive")
		}

		expected = *req.ExpectedVersion
	}

	updated, err := s.settings.WriteAt(c.UserContext(), c.Params("key"), req.Value, expected, actor(c))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(MutationResponse{
		Success: true,
		Message: "Setting updated successfully",
		Setting: updated,
	})
}

// Rollback restores the value of a previous version as a new version.
func (s *Service) Rollback(c *fiber.Ctx) error {
	version, err := strconv.Atoi(c.Params("version"))
	if err != nil {
		return handler.BadRequest(c, "Version must be a number")
	}

	updated, err := s.settings.Rollback(c.UserContext(), c.Params("key"), version, actor(c))
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Str("key", updated.Key).Int("restored", version).Str("actor", actor(c)).Msg("setting rolled back")

	return c.JSON(MutationResponse{
		Success: true,
		Message: fmt.Sprintf("Rolled back to version %d", version),
		Setting: updated,
	})
}

func actor(c *fiber.Ctx) string {
	if user := auth.CurrentUser(c); user != nil {
		return user.Username
	}

	return ""
}
