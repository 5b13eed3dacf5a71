// Package setting provides transactional persistence for site settings.
//
// Store is the only component that touches the site_settings table. Its single
// mutation primitive is CompareAndSet, which replaces a row only while the stored
// current_version still equals the version the caller read.
package setting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitesettings/sitesettings/internal/db/models"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingKeyEmpty is returned when a key is empty.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to create a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrVersionConflict is returned when the stored version no longer matches the expected one.
	ErrVersionConflict = errors.New("setting version changed concurrently")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrStorage wraps every failure reported by the database itself.
	ErrStorage = errors.New("settings storage failure")
)

// Store persists one row per setting key.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on top of db.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Store{db: db}, nil
}

func keyIs(key string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func versionIs(version int) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "current_version"}, Value: version}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// GetByKey retrieves a setting by its key.
func (s *Store) GetByKey(ctx context.Context, key string) (*models.Setting, error) {
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	return s.get(s.db.WithContext(ctx), key)
}

func (s *Store) get(tx *gorm.DB, key string) (*models.Setting, error) {
	var row models.Setting

	result := tx.Where(keyIs(key)).Take(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, storageErr("get", result.Error)
	}

	return &row, nil
}

// ListAll retrieves all settings ordered by category, then key.
func (s *Store) ListAll(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting

	result := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "category"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&rows)
	if result.Error != nil {
		return nil, storageErr("list", result.Error)
	}

	return rows, nil
}

// Create inserts a freshly seeded setting. The row always starts at version 1
// with an empty history, whatever the caller put into those fields.
func (s *Store) Create(ctx context.Context, row *models.Setting) (*models.Setting, error) {
	if row == nil || row.Key == "" {
		return nil, ErrSettingKeyEmpty
	}

	created := *row
	created.CurrentVersion = 1
	created.History = []byte("[]")

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Setting{}).Where(keyIs(row.Key)).Count(&count).Error; err != nil {
			return storageErr("create", err)
		}

		if count > 0 {
			return ErrSettingAlreadyExists
		}

		if err := tx.Create(&created).Error; err != nil {
			return storageErr("create", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// CompareAndSet replaces the row of key with next, but only while its stored
// current_version equals expectedVersion. Key, ID and CreatedAt of next are ignored.
// Zero matched rows yields ErrVersionConflict, or ErrSettingNotFound when the key
// does not exist at all. The update and the re-read run in one transaction.
func (s *Store) CompareAndSet(
	ctx context.Context,
	key string,
	expectedVersion int,
	next *models.Setting,
) (*models.Setting, error) {
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var stored *models.Setting

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Setting{}).
			Where(keyIs(key)).
			Where(versionIs(expectedVersion)).
			Updates(map[string]interface{}{
				"value":           next.Value,
				"current_version": next.CurrentVersion,
				"history":         next.History,
				"updated_at":      next.UpdatedAt,
				"updated_by":      next.UpdatedBy,
			})
		if result.Error != nil {
			return storageErr("compare and set", result.Error)
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Setting{}).Where(keyIs(key)).Count(&count).Error; err != nil {
				return storageErr("compare and set", err)
			}

			if count == 0 {
				return ErrSettingNotFound
			}

			return ErrVersionConflict
		}

		row, err := s.get(tx, key)
		if err != nil {
			return err
		}

		stored = row

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}
