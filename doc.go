// Package main provides the entry point for the site settings service.
// It serves a JSON API through which administrators read, change and roll back
// versioned runtime settings, and a public endpoint returning the current values
// merged over their defaults. Data is stored with gorm in mysql, postgres or sqlite.
package main
