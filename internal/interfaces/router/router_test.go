package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	geosvc "airledger-backend/internal/application/geography"
	ledgersvc "airledger-backend/internal/application/ledger"
	querysvc "airledger-backend/internal/application/queries"
	"airledger-backend/internal/config"
	"airledger-backend/internal/infrastructure/store/storetest"
	"airledger-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) (*fiber.App, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	geo, err := geosvc.Default()
	require.NoError(t, err)

	st := storetest.Open(t, storetest.SQLite)
	cfg := &config.Config{StoreBackend: storetest.SQLite, HealthAdminKey: "k", FrontendURLEndsWith: ".airledger.app"}
	app := CreateApp(cfg, Services{
		Store:     st,
		Redis:     rdb,
		Ledger:    &ledgersvc.Service{Store: st},
		Queries:   &querysvc.Service{Store: st},
		Geography: geo,
	})
	return app, rdb
}

func call(t *testing.T, app *fiber.App, method, path, caller string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(middleware.IdentityHeader, caller)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestMarketplaceFlow(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := call(t, app, "POST", "/api/v1/registry/initialize", "authority", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	resp, _ = call(t, app, "POST", "/api/v1/listings", "seller", map[string]interface{}{
		"latitude": 19076000, "longitude": 72877700,
		"height_from": 50, "height_to": 150, "area_sqm": 500,
		"price": 5_000_000_000, "listing_type": "sale", "duration_days": 0,
		"city": "Mumbai", "country": "IN",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = call(t, app, "POST", "/api/v1/accounts/fund", "authority",
		map[string]interface{}{"owner": "buyer", "amount": 6_000_000_000})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, out := call(t, app, "POST", "/api/v1/listings/0/purchase", "buyer", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	settlement := out["data"].(map[string]interface{})
	assert.Equal(t, float64(125_000_000), settlement["fee"])
	assert.Equal(t, float64(4_875_000_000), settlement["proceeds"])

	_, out = call(t, app, "GET", "/api/v1/accounts/seller", "", nil)
	assert.Equal(t, float64(4_875_000_000), out["data"].(map[string]interface{})["balance"])
	_, out = call(t, app, "GET", "/api/v1/accounts/authority", "", nil)
	assert.Equal(t, float64(125_000_000), out["data"].(map[string]interface{})["balance"])

	_, out = call(t, app, "GET", "/api/v1/listings?status=sold", "", nil)
	assert.Len(t, out["data"], 1)

	_, out = call(t, app, "GET", "/api/v1/locations/IN/Mumbai", "", nil)
	assert.Equal(t, float64(1), out["data"].(map[string]interface{})["listing_count"])

	resp, _ = call(t, app, "GET", "/api/v1/geography/IN", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSignedRoutesRequireIdentity(t *testing.T) {
	app, _ := setupApp(t)
	for _, path := range []string{
		"/api/v1/registry/initialize",
		"/api/v1/listings",
		"/api/v1/listings/0/purchase",
		"/api/v1/listings/0/lease",
		"/api/v1/listings/0/cancel",
		"/api/v1/accounts/fund",
	} {
		resp, _ := call(t, app, "POST", path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
	resp, _ := call(t, app, "PATCH", "/api/v1/listings/0/price", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	app, _ := setupApp(t)
	resp, out := call(t, app, "GET", "/api/v1/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
}

func TestHealthRoutesAndTraffic(t *testing.T) {
	app, rdb := setupApp(t)

	call(t, app, "GET", "/api/v1/registry", "", nil)
	total, err := rdb.Get(context.Background(), middleware.KeyReqTotal).Int()
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	resp, out := call(t, app, "GET", "/health/json", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "airledger-api", out["service"])

	resp, _ = call(t, app, "GET", "/", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestCORS(t *testing.T) {
	app, _ := setupApp(t)
	req := httptest.NewRequest("OPTIONS", "/api/v1/listings", nil)
	req.Header.Set("Origin", "https://app.airledger.app")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.airledger.app", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/api/v1/listings", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
