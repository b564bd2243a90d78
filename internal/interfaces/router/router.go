package router

import (
	"net/http"

	geosvc "airledger-backend/internal/application/geography"
	ledgersvc "airledger-backend/internal/application/ledger"
	querysvc "airledger-backend/internal/application/queries"
	"airledger-backend/internal/config"
	"airledger-backend/internal/infrastructure/store"
	geohandler "airledger-backend/internal/interfaces/handlers/geography"
	healthhandler "airledger-backend/internal/interfaces/handlers/health"
	ledgerhandler "airledger-backend/internal/interfaces/handlers/ledger"
	queryhandler "airledger-backend/internal/interfaces/handlers/queries"
	"airledger-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
)

// Services are the dependencies the routes are built over. Redis may be nil.
type Services struct {
	Store     *store.Store
	Redis     *redis.Client
	Ledger    *ledgersvc.Service
	Queries   *querysvc.Service
	Geography *geosvc.Table
}

func CreateApp(cfg *config.Config, s Services) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(s.Redis),
		EnableTrustedProxyCheck: true,
		// city names in location routes arrive percent-encoded
		UnescapePath: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.HealthMarker(s.Redis))
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            s.Redis,
		Store:          s.Store,
		StoreDriver:    cfg.StoreBackend,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	lh := &ledgerhandler.Handlers{Service: s.Ledger}
	qh := &queryhandler.Handlers{Service: s.Queries}
	gh := &geohandler.Handlers{Table: s.Geography}

	api := app.Group("/api/v1")
	signed := middleware.RequireIdentity()

	// Registry
	api.Post("/registry/initialize", signed, lh.InitializeRegistry)
	api.Get("/registry", qh.GetRegistry)

	// Listings
	lg := api.Group("/listings")
	lg.Post("", signed, lh.CreateListing)
	lg.Get("", qh.ListListings)
	lg.Get("/:listing_id", qh.GetListing)
	lg.Get("/:listing_id/events", qh.ListingEvents)
	lg.Patch("/:listing_id/price", signed, lh.UpdatePrice)
	lg.Post("/:listing_id/purchase", signed, lh.Purchase)
	lg.Post("/:listing_id/lease", signed, lh.Lease)
	lg.Post("/:listing_id/cancel", signed, lh.Cancel)

	// Locations
	api.Get("/locations", qh.Locations)
	api.Get("/locations/:country/:city", qh.GetLocation)
	api.Get("/locations/:country/:city/listings", qh.ListingsByLocation)

	// Owners and lessees
	api.Get("/owners/:identity/listings", qh.ListingsByOwner)
	api.Get("/leases/:listing_id/:lessee", qh.GetLease)
	api.Get("/lessees/:identity/leases", qh.LeasesByLessee)

	// Accounts
	api.Post("/accounts/fund", signed, lh.FundAccount)
	api.Get("/accounts/:identity", qh.Balance)

	// Geography
	api.Get("/geography", gh.List)
	api.Get("/geography/:code", gh.Get)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
