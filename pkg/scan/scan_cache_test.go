package scan

import (
	"Durian-Scanner/domain"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanApp serves the service through a default (mutable) fiber app so path
// params point into buffers fiber reuses across requests.
func scanApp(svc ScanService) *fiber.App {
	app := fiber.New()
	app.Get("/scan/:scan_id", func(c *fiber.Ctx) error {
		res, err := svc.GetScan(c.Context(), c.Params("scan_id"))
		if err != nil {
			return c.Status(domain.StatusOf(domain.KindOf(err))).JSON(fiber.Map{"success": false})
		}
		return c.JSON(res)
	})
	app.Delete("/scan/:scan_id", func(c *fiber.Ctx) error {
		if err := svc.DeleteScan(c.Context(), c.Params("scan_id"), c.Get("X-User-Id")); err != nil {
			return c.Status(domain.StatusOf(domain.KindOf(err))).JSON(fiber.Map{"success": false})
		}
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func getScan(t *testing.T, app *fiber.App, id string) (int, domain.ScanResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/scan/"+id, nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out domain.ScanResponse
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestScanCacheKeysSurviveRequestBufferReuse(t *testing.T) {
	f := newFixture()
	a := seedScan(f, "owner-a")
	b := seedScan(f, "owner-b")
	app := scanApp(f.svc)

	status, _ := getScan(t, app, a.ID.String())
	require.Equal(t, fiber.StatusOK, status)
	status, _ = getScan(t, app, b.ID.String())
	require.Equal(t, fiber.StatusOK, status)

	assert.ElementsMatch(t, []string{a.ID.String(), b.ID.String()}, f.svc.cache.cache.Keys())

	for i := 0; i < 200; i++ {
		status, _ := getScan(t, app, uuid.NewString())
		require.Equal(t, fiber.StatusNotFound, status)
	}

	status, got := getScan(t, app, a.ID.String())
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, a.ID.String(), got.ID)
	assert.Equal(t, "owner-a", got.UserID)

	req := httptest.NewRequest(fiber.MethodDelete, "/scan/"+a.ID.String(), nil)
	req.Header.Set("X-User-Id", "owner-a")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{b.ID.String()}, f.svc.cache.cache.Keys())
	status, got = getScan(t, app, b.ID.String())
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "owner-b", got.UserID)
}
