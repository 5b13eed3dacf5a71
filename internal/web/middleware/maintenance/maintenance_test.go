package maintenance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesettings/sitesettings/internal/settings"
	"github.com/sitesettings/sitesettings/internal/settings/cache"
)

type staticLister []settings.Setting

func (l staticLister) List(_ context.Context) ([]settings.Setting, error) {
	return l, nil
}

func newApp(on bool, bypass func(c *fiber.Ctx) bool) *fiber.App {
	c := cache.New(staticLister{
		{Key: settings.KeyMaintenanceMode, Value: settings.Bool(on)},
		{Key: settings.KeyMaintenanceMessage, Value: settings.Text("Back soon")},
	})

	app := fiber.New()
	app.Use(New(Config{Settings: c, Bypass: bypass}))

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/", ok)
	app.Get("/api/settings", ok)
	app.Get("/api/admin/settings", ok)
	app.Get("/checkalive", ok)

	return app
}

func TestMaintenance(t *testing.T) {
	testCases := []struct {
		name           string
		on             bool
		path           string
		admin          bool
		expectedStatus int
	}{
		{name: "off", on: false, path: "/", expectedStatus: fiber.StatusOK},
		{name: "on blocks pages", on: true, path: "/", expectedStatus: fiber.StatusServiceUnavailable},
		{name: "on blocks public api", on: true, path: "/api/settings", expectedStatus: fiber.StatusServiceUnavailable},
		{name: "admin api stays reachable", on: true, path: "/api/admin/settings", expectedStatus: fiber.StatusOK},
		{name: "health check stays reachable", on: true, path: "/checkalive", expectedStatus: fiber.StatusOK},
		{name: "admins bypass", on: true, path: "/", admin: true, expectedStatus: fiber.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(tc.on, func(c *fiber.Ctx) bool {
				return c.Get("X-Admin") == "yes"
			})

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.admin {
				req.Header.Set("X-Admin", "yes")
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			require.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedStatus == fiber.StatusServiceUnavailable {
				var body Response
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "maintenance", body.Error)
				assert.Equal(t, "Back soon", body.Message)
			}
		})
	}
}

func TestNewPanicsWithoutSettings(t *testing.T) {
	assert.Panics(t, func() { New(Config{}) })
}
