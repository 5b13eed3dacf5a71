package logger

import (
	"io"
	"path"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Console selects stdout/stderr output.
type Console struct {
	Enabled bool `toml:"enabled"`
	// UseConsoleWriter prints human readable lines instead of json.
	UseConsoleWriter bool `toml:"useConsoleWriter"`
}

// Rotation describes one lumberjack rotated log file.
type Rotation struct {
	File       string `toml:"file"`
	MaxSize    int    `toml:"maxSize"` // megabytes
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"` // days
}

// Writer opens the rotated file inside dir.
func (r Rotation) Writer(dir string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(dir, r.File),
		MaxSize:    r.MaxSize,
		MaxAge:     r.MaxAge,
		MaxBackups: r.MaxBackups,
	}
}

// LogFile writes every level group and the http access log to its own file below Path.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	Access Rotation `toml:"access"`
	Error  Rotation `toml:"error"`
	Warn   Rotation `toml:"warn"`
	Info   Rotation `toml:"info"`
	Trace  Rotation `toml:"trace"`
}

// Log is the [Log] section of main.toml.
type Log struct {
	LogLevel string // trace, debug, info, warn or error

	// EnableAccessLogToConsole adds the access log to the console output when Console is enabled.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool

	AppName     string
	ServiceName string // label of the log statement counter

	Console Console
	File    LogFile `toml:"file"`
}
