package queries

import (
	"strconv"

	querysvc "airledger-backend/internal/application/queries"
	"airledger-backend/internal/domain"
	"airledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *querysvc.Service
}

func listingID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("listing_id"), 10, 64)
	return id, err == nil
}

func identityParam(c *fiber.Ctx, name string) (domain.Identity, error) {
	return domain.ParseIdentity(c.Params(name))
}

// GET /api/v1/registry
func (h *Handlers) GetRegistry(c *fiber.Ctx) error {
	reg, err := h.Service.GetRegistry(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Registry fetched successfully", reg, nil)
}

// GET /api/v1/listings?status=active
func (h *Handlers) ListListings(c *fiber.Ctx) error {
	var filter *domain.ListingStatus
	if s := c.Query("status"); s != "" {
		st, err := domain.ParseListingStatus(s)
		if err != nil {
			return response.Error(c, "Invalid status filter", fiber.StatusBadRequest, nil)
		}
		filter = &st
	}
	listings, err := h.Service.ListListings(c.UserContext(), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.List(c, "Listings fetched successfully", listings)
}

// GET /api/v1/listings/:listing_id
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	id, ok := listingID(c)
	if !ok {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.GetListing(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing fetched successfully", listing, nil)
}

// GET /api/v1/listings/:listing_id/events
func (h *Handlers) ListingEvents(c *fiber.Ctx) error {
	id, ok := listingID(c)
	if !ok {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	events, err := h.Service.ListingEvents(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.List(c, "Listing events fetched successfully", events)
}

// GET /api/v1/locations
func (h *Handlers) Locations(c *fiber.Ctx) error {
	locs, err := h.Service.Locations(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.List(c, "Locations fetched successfully", locs)
}

// GET /api/v1/locations/:country/:city
func (h *Handlers) GetLocation(c *fiber.Ctx) error {
	idx, err := h.Service.GetLocationIndex(c.UserContext(), c.Params("city"), c.Params("country"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Location fetched successfully", idx, nil)
}

// GET /api/v1/locations/:country/:city/listings
func (h *Handlers) ListingsByLocation(c *fiber.Ctx) error {
	listings, err := h.Service.ListingsByLocation(c.UserContext(), c.Params("city"), c.Params("country"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.List(c, "Listings fetched successfully", listings)
}

// GET /api/v1/owners/:identity/listings
func (h *Handlers) ListingsByOwner(c *fiber.Ctx) error {
	owner, err := identityParam(c, "identity")
	if err != nil {
		return response.FromError(c, err)
	}
	listings, err := h.Service.ListingsByOwner(c.UserContext(), owner)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.List(c, "Listings fetched successfully", listings)
}

// GET /api/v1/leases/:listing_id/:lessee
func (h *Handlers) GetLease(c *fiber.Ctx) error {
	id, ok := listingID(c)
	if !ok {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	lessee, err := identityParam(c, "lessee")
	if err != nil {
		return response.FromError(c, err)
	}
	lease, err := h.Service.GetLease(c.UserContext(), id, lessee)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Lease fetched successfully", lease, nil)
}

// GET /api/v1/lessees/:identity/leases?active=true
func (h *Handlers) LeasesByLessee(c *fiber.Ctx) error {
	lessee, err := identityParam(c, "identity")
	if err != nil {
		return response.FromError(c, err)
	}
	var leases []querysvc.LeaseView
	if c.QueryBool("active", false) {
		leases, err = h.Service.ActiveLeasesByLessee(c.UserContext(), lessee)
	} else {
		leases, err = h.Service.LeasesByLessee(c.UserContext(), lessee)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	return response.List(c, "Leases fetched successfully", leases)
}

// GET /api/v1/accounts/:identity
func (h *Handlers) Balance(c *fiber.Ctx) error {
	owner, err := identityParam(c, "identity")
	if err != nil {
		return response.FromError(c, err)
	}
	acct, err := h.Service.Balance(c.UserContext(), owner)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Balance fetched successfully", acct, nil)
}
