package ledger

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ledgersvc "airledger-backend/internal/application/ledger"
	"airledger-backend/internal/infrastructure/store/storetest"
	"airledger-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := &ledgersvc.Service{
		Store: storetest.Open(t, storetest.LevelDB),
		Now:   func() time.Time { return time.Unix(1_700_000_000, 0) },
	}
	h := &Handlers{Service: svc}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(nil)})
	signed := middleware.RequireIdentity()
	app.Post("/registry/initialize", signed, h.InitializeRegistry)
	app.Post("/listings", signed, h.CreateListing)
	app.Patch("/listings/:listing_id/price", signed, h.UpdatePrice)
	app.Post("/listings/:listing_id/purchase", signed, h.Purchase)
	app.Post("/listings/:listing_id/lease", signed, h.Lease)
	app.Post("/listings/:listing_id/cancel", signed, h.Cancel)
	app.Post("/accounts/fund", signed, h.FundAccount)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, caller string, body interface{}) (int, map[string]interface{}) {
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
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func listingBody(typ string, price uint64) map[string]interface{} {
	return map[string]interface{}{
		"latitude":      19076000,
		"longitude":     72877700,
		"height_from":   50,
		"height_to":     150,
		"area_sqm":      500,
		"price":         price,
		"listing_type":  typ,
		"duration_days": 365,
		"city":          "Mumbai",
		"country":       "IN",
		"metadata_uri":  "ipfs://meta",
	}
}

func data(out map[string]interface{}) map[string]interface{} {
	d, _ := out["data"].(map[string]interface{})
	return d
}

func errKind(out map[string]interface{}) string {
	e, _ := out["error"].(map[string]interface{})
	details, _ := e["details"].(map[string]interface{})
	kind, _ := details["kind"].(string)
	return kind
}

func TestIdentityRequired(t *testing.T) {
	app := setupApp(t)
	code, _ := do(t, app, http.MethodPost, "/registry/initialize", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestInitializeRegistry(t *testing.T) {
	app := setupApp(t)
	code, out := do(t, app, http.MethodPost, "/registry/initialize", "auth", nil)
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, "auth", data(out)["authority"])
	assert.Equal(t, float64(250), data(out)["platform_fee_bps"])

	code, out = do(t, app, http.MethodPost, "/registry/initialize", "other", nil)
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "state_conflict", errKind(out))
}

func TestCreateListing(t *testing.T) {
	app := setupApp(t)
	do(t, app, http.MethodPost, "/registry/initialize", "auth", nil)

	code, out := do(t, app, http.MethodPost, "/listings", "alice", listingBody("sale", 5_000_000_000))
	require.Equal(t, fiber.StatusCreated, code)
	l := data(out)
	assert.Equal(t, float64(0), l["listing_id"])
	assert.Equal(t, "alice", l["owner"])
	assert.Equal(t, "active", l["status"])
	assert.Equal(t, "sale", l["listing_type"])
	assert.Nil(t, l["buyer"])
}

func TestCreateListing_Validation(t *testing.T) {
	app := setupApp(t)
	do(t, app, http.MethodPost, "/registry/initialize", "auth", nil)

	cases := map[string]func(map[string]interface{}){
		"zero price":   func(b map[string]interface{}) { b["price"] = 0 },
		"bad heights":  func(b map[string]interface{}) { b["height_to"] = 50 },
		"bad type":     func(b map[string]interface{}) { b["listing_type"] = "rent" },
		"bad country":  func(b map[string]interface{}) { b["country"] = "I" },
		"missing city": func(b map[string]interface{}) { b["city"] = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			body := listingBody("sale", 100)
			mutate(body)
			code, out := do(t, app, http.MethodPost, "/listings", "alice", body)
			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.Equal(t, "error", out["status"])
		})
	}

	code, _ := do(t, app, http.MethodPost, "/listings/0/cancel", "alice", nil)
	assert.Equal(t, fiber.StatusNotFound, code, "no listing was created by rejected requests")
}

func TestCreateListing_InvalidBody(t *testing.T) {
	app := setupApp(t)
	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.IdentityHeader, "alice")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPurchaseFlow(t *testing.T) {
	app := setupApp(t)
	do(t, app, http.MethodPost, "/registry/initialize", "auth", nil)
	do(t, app, http.MethodPost, "/listings", "alice", listingBody("sale", 10_000))

	code, out := do(t, app, http.MethodPost, "/listings/0/purchase", "bob", nil)
	assert.Equal(t, fiber.StatusPaymentRequired, code)
	assert.Equal(t, "resource", errKind(out))

	code, _ = do(t, app, http.MethodPost, "/accounts/fund", "bob", map[string]interface{}{"owner": "bob", "amount": 10_000})
	assert.Equal(t, fiber.StatusForbidden, code)

	code, out = do(t, app, http.MethodPost, "/accounts/fund", "auth", map[string]interface{}{"owner": "bob", "amount": 10_000})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(10_000), data(out)["balance"])

	code, out = do(t, app, http.MethodPost, "/listings/0/purchase", "bob", nil)
	require.Equal(t, fiber.StatusOK, code)
	s := data(out)
	assert.Equal(t, float64(250), s["fee"])
	assert.Equal(t, float64(9_750), s["proceeds"])
	assert.Equal(t, "alice", s["seller"])
	assert.Equal(t, "auth", s["treasury"])
	listing := s["listing"].(map[string]interface{})
	assert.Equal(t, "sold", listing["status"])
	assert.Equal(t, "bob", listing["buyer"])

	code, out = do(t, app, http.MethodPost, "/listings/0/purchase", "carol", nil)
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "state_conflict", errKind(out))
}

func TestLeaseFlow(t *testing.T) {
	app := setupApp(t)
	do(t, app, http.MethodPost, "/registry/initialize", "auth", nil)
	do(t, app, http.MethodPost, "/listings", "alice", listingBody("lease", 1_000))
	do(t, app, http.MethodPost, "/accounts/fund", "auth", map[string]interface{}{"owner": "bob", "amount": 5_000})

	code, out := do(t, app, http.MethodPost, "/listings/0/purchase", "bob", nil)
	assert.Equal(t, fiber.StatusConflict, code, "lease listings cannot be bought")
	assert.Equal(t, "state_conflict", errKind(out))

	code, out = do(t, app, http.MethodPost, "/listings/0/lease", "bob", nil)
	require.Equal(t, fiber.StatusOK, code)
	lease := data(out)["lease"].(map[string]interface{})
	assert.Equal(t, "bob", lease["lessee"])
	assert.Equal(t, float64(1_700_000_000+365*86_400), lease["end_date"])
	assert.Equal(t, "leased", data(out)["listing"].(map[string]interface{})["status"])
}

func TestUpdatePriceAndCancel(t *testing.T) {
	app := setupApp(t)
	do(t, app, http.MethodPost, "/registry/initialize", "auth", nil)
	do(t, app, http.MethodPost, "/listings", "alice", listingBody("sale", 100))

	code, _ := do(t, app, http.MethodPatch, "/listings/0/price", "mallory", map[string]interface{}{"price": 200})
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = do(t, app, http.MethodPatch, "/listings/0/price", "mallory", map[string]interface{}{"price": 0})
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = do(t, app, http.MethodPatch, "/listings/0/price", "alice", map[string]interface{}{"price": 0})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out := do(t, app, http.MethodPatch, "/listings/0/price", "alice", map[string]interface{}{"price": 200})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(200), data(out)["price"])

	code, _ = do(t, app, http.MethodPost, "/listings/abc/cancel", "alice", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodPost, "/listings/0/cancel", "mallory", nil)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, out = do(t, app, http.MethodPost, "/listings/0/cancel", "alice", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "cancelled", data(out)["status"])

	code, _ = do(t, app, http.MethodPatch, "/listings/0/price", "alice", map[string]interface{}{"price": 300})
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = do(t, app, http.MethodPatch, "/listings/0/price", "alice", map[string]interface{}{"price": 0})
	assert.Equal(t, fiber.StatusConflict, code)
}
