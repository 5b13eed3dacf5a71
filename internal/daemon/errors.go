package daemon

import "errors"

var (
	// ErrNilConfig is returned when the daemon is created without configuration.
	ErrNilConfig = errors.New("config is nil")

	// ErrNoAdminPassword is returned when the bootstrap admin would be created without a password.
	ErrNoAdminPassword = errors.New("admin password must be set to create the bootstrap admin")
)
