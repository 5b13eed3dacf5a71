package config

import (
	"time"

	"github.com/sitesettings/sitesettings/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Admin     Admin
	Settings  Settings
}

// Webserver implement webserver settings.
type Webserver struct {
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}

// Admin holds the bootstrap administrator account created on an empty user table.
type Admin struct {
	Username string
	Email    string
	Password string
}

// Settings tunes the settings store.
type Settings struct {
	// HistoryLimit caps the number of history entries returned by the history endpoint.
	// Zero returns everything. Persisted history is never truncated.
	HistoryLimit int
}
