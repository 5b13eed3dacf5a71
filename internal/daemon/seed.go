package daemon

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"

	"github.com/sitesettings/sitesettings/internal/auth"
	"github.com/sitesettings/sitesettings/internal/config"
	"github.com/sitesettings/sitesettings/internal/settings"
	"github.com/sitesettings/sitesettings/internal/web/handler"
)

// Seed creates missing permissions, roles and settings, and the bootstrap admin on an empty user table.
// Existing rows are never changed.
func Seed(ctx context.Context, cfg *config.Config, deps *handler.Deps) error {
	var result *multierror.Error

	if err := deps.Auth.EnsureRoles(ctx, auth.DefaultPermissions, auth.DefaultRoles); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	if err := seedAdmin(ctx, cfg, deps); err != nil {
		result = multierror.Append(result, err)
	}

	created, err := deps.Settings.Seed(ctx, settings.Definitions)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to seed settings: %w", err))
	}

	if created > 0 {
		log.Info().Int("created", created).Msg("seeded settings")
	}

	return result.ErrorOrNil()
}

func seedAdmin(ctx context.Context, cfg *config.Config, deps *handler.Deps) error {
	count, err := deps.Users.CountUsers(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	if cfg.Admin.Password == "" {
		return ErrNoAdminPassword
	}

	role, err := deps.Auth.RoleByName(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	user, err := deps.Users.CreateUser(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password, role.ID)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.Warn().Str("username", user.Username).Msg("created bootstrap admin, change its password")

	return nil
}
