// Package auth provides authentication and authorization for the settings admin API.
//
// This package implements a Role-Based Access Control (RBAC) system with local
// database authentication using Argon2id password hashing.
//
// # Authorization System
//
// Every user has exactly one role and every role holds a set of permissions:
//   - PermSettingsView: read settings and their history
//   - PermSettingsUpdate: write new values
//   - PermSettingsRollback: restore a value from the history
//
// Inactive users have no permissions at all.
//
// # Middleware
//
// RequirePermission protects a route. It answers 401 without a valid session
// and 403 when the user's role lacks the permission. On success the session
// data is stored in fiber.Locals under LocalsUser and the username is exposed
// to the access log.
//
// Example usage:
//
//	authService := auth.NewService(db)
//	err := authService.EnsureRoles(ctx, auth.DefaultPermissions, auth.DefaultRoles)
//
//	app.Put("/api/admin/settings/:key",
//	    auth.RequirePermission(authService, sessions, auth.PermSettingsUpdate),
//	    handler,
//	)
package auth
