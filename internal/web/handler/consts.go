package handler

const (
	// RouterRootPath is the root path inside a route group.
	RouterRootPath = ""

	// APIPath is the prefix of the public JSON API.
	APIPath = "/api"

	// AdminAPIPath is the prefix of the admin JSON API.
	AdminAPIPath = "/api/admin"

	// ErrNilACDFatalLogMsg is used if app or deps var pointer is nil.
	ErrNilACDFatalLogMsg = "app or deps is nil"
)
