package settings

import (
	"errors"
	"fmt"

	"github.com/sitesettings/sitesettings/internal/db/controller/setting"
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("setting not found")

	// ErrVersionNotFound is returned when a rollback targets a version that is not in the history.
	// It matches ErrNotFound with errors.Is.
	ErrVersionNotFound = fmt.Errorf("%w: version not in history", ErrNotFound)

	// ErrValidation is returned when a value does not match the declared type of the setting.
	ErrValidation = errors.New("invalid setting value")

	// ErrVersionConflict is returned when the stored version changed between read and write.
	// The caller may re-read and retry.
	ErrVersionConflict = errors.New("setting was changed concurrently")

	// ErrUnauthorized is returned for a mutation without an admin principal.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStorage is returned when the persistence layer fails.
	ErrStorage = errors.New("settings storage error")

	// ErrUnknownType is returned for a type outside boolean, text and image.
	ErrUnknownType = errors.New("unknown setting type")
)

// fromStore maps errors of the setting store onto the package errors.
func fromStore(key string, err error) error {
	switch {
	case errors.Is(err, setting.ErrSettingNotFound), errors.Is(err, setting.ErrSettingKeyEmpty):
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	case errors.Is(err, setting.ErrVersionConflict):
		return fmt.Errorf("%w: %q", ErrVersionConflict, key)
	default:
		return fmt.Errorf("%w: %q: %w", ErrStorage, key, err)
	}
}
