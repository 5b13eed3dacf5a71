package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedEngine error if config db.gormEngine is not one of mysql, postgres or sqlite.
	ErrUnsupportedEngine = errors.New("toml config db.gormEngine must be mysql, postgres or sqlite")

	// ErrNegativeHistoryLimit error if config settings.historyLimit is below zero.
	ErrNegativeHistoryLimit = errors.New("toml config settings.historyLimit can not be negative")
)
