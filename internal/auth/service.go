package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sitesettings/sitesettings/internal/db/models"
)

// Service provides authorization functionality.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission checks if a user has a specific permission.
// This works by checking if the user's role has the permission assigned.
// Inactive users have no permissions.
func (s *Service) HasPermission(ctx context.Context, userID uint64, permission string) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ? AND permissions.name = ?", userID, true, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(ctx context.Context, userID uint64, permissions []string) (bool, error) {
	for _, perm := range permissions {
		has, err := s.HasPermission(ctx, userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// GetUserPermissions retrieves all permissions of the user's role.
func (s *Service) GetUserPermissions(ctx context.Context, userID uint64) ([]string, error) {
	var permissions []string

	err := s.db.WithContext(ctx).Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ?", userID, true).
		Order("permissions.name").
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return permissions, nil
}

// EnsureRoles creates the given permissions and roles if missing and assigns the permissions to the roles.
func (s *Service) EnsureRoles(ctx context.Context, perms []PermissionDef, roles []RoleDef) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint, len(perms))

		for _, def := range perms {
			var perm models.Permission

			err := tx.Where("name = ?", def.Name).
				Attrs(models.Permission{Resource: def.Resource, Action: def.Action, Description: def.Description}).
				FirstOrCreate(&perm, models.Permission{Name: def.Name}).Error
			if err != nil {
				return fmt.Errorf("failed to create/get permission %s: %w", def.Name, err)
			}

			ids[def.Name] = perm.ID
		}

		for _, def := range roles {
			var role models.Role

			err := tx.Where("name = ?", def.Name).
				Attrs(models.Role{Description: def.Description, IsSystem: true}).
				FirstOrCreate(&role, models.Role{Name: def.Name}).Error
			if err != nil {
				return fmt.Errorf("failed to create/get role %s: %w", def.Name, err)
			}

			for _, name := range def.Permissions {
				id, ok := ids[name]
				if !ok {
					return fmt.Errorf("role %s: unknown permission %s", def.Name, name) //nolint:err113
				}

				err = tx.Where("role_id = ? AND permission_id = ?", role.ID, id).
					FirstOrCreate(&models.RolePermission{}, models.RolePermission{RoleID: role.ID, PermissionID: id}).Error
				if err != nil {
					return fmt.Errorf("failed to assign permission %s to role %s: %w", name, def.Name, err)
				}
			}
		}

		return nil
	})
}

// RoleByName returns the role with the given name.
func (s *Service) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role

	err := s.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}

	return &role, nil
}

// AssignRoleToUser assigns a role to a user.
func (s *Service) AssignRoleToUser(ctx context.Context, userID uint64, roleID uint) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID).Error
}
