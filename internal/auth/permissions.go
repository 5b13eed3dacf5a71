package auth

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to the settings admin API.
const (
	// PermSettingsView allows reading settings and their history.
	PermSettingsView = "settings.view"
	// PermSettingsUpdate allows writing new setting values.
	PermSettingsUpdate = "settings.update"
	// PermSettingsRollback allows restoring a value from the history.
	PermSettingsRollback = "settings.rollback"
)

// Names of the roles created by seeding.
const (
	// RoleAdmin may read and change every setting.
	RoleAdmin = "admin"
	// RoleViewer may only read settings.
	RoleViewer = "viewer"
)

// PermissionDef describes a permission created by seeding.
type PermissionDef struct {
	Name        string
	Resource    string
	Action      string
	Description string
}

// RoleDef describes a role created by seeding.
type RoleDef struct {
	Name        string
	Description string
	Permissions []string
}

// DefaultPermissions lists every permission known to the application.
var DefaultPermissions = []PermissionDef{ //nolint:gochecknoglobals
	{Name: PermSettingsView, Resource: "settings", Action: "view", Description: "Read settings and their history"},
	{Name: PermSettingsUpdate, Resource: "settings", Action: "update", Description: "Change setting values"},
	{Name: PermSettingsRollback, Resource: "settings", Action: "rollback", Description: "Restore previous setting values"},
}

// DefaultRoles lists the system roles and their permissions.
var DefaultRoles = []RoleDef{ //nolint:gochecknoglobals
	{
		Name:        RoleAdmin,
		Description: "Full access to site settings",
		Permissions: []string{PermSettingsView, PermSettingsUpdate, PermSettingsRollback},
	},
	{
		Name:        RoleViewer,
		Description: "Read-only access to site settings",
		Permissions: []string{PermSettingsView},
	},
}
