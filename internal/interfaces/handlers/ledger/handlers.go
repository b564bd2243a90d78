package ledger

import (
	"strconv"

	ledgersvc "airledger-backend/internal/application/ledger"
	"airledger-backend/internal/domain"
	"airledger-backend/internal/middleware"
	"airledger-backend/internal/pkg/response"
	"airledger-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *ledgersvc.Service
}

type createListingRequest struct {
	Latitude     int32  `json:"latitude" validate:"min=-90000000,max=90000000"`
	Longitude    int32  `json:"longitude" validate:"min=-180000000,max=180000000"`
	HeightFrom   uint16 `json:"height_from"`
	HeightTo     uint16 `json:"height_to" validate:"gtfield=HeightFrom"`
	AreaSqm      uint32 `json:"area_sqm"`
	Price        uint64 `json:"price" validate:"gt=0"`
	ListingType  string `json:"listing_type" validate:"required,listing_type"`
	DurationDays uint32 `json:"duration_days"`
	City         string `json:"city" validate:"required,max=50"`
	Country      string `json:"country" validate:"required,country"`
	MetadataURI  string `json:"metadata_uri" validate:"max=200"`
}

type updatePriceRequest struct {
	Price uint64 `json:"price"`
}

type fundRequest struct {
	Owner  string `json:"owner" validate:"required,identity"`
	Amount uint64 `json:"amount" validate:"gt=0"`
}

// parseBody decodes and shape-checks a JSON body; on failure the error
// response has already been written and ok is false.
func parseBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(out); err != nil {
		var details interface{}
		if verr, ok := err.(*validation.Error); ok {
			details = map[string]interface{}{"kind": domain.KindValidation.String(), "fields": verr.Fields}
		}
		return false, response.Error(c, err.Error(), fiber.StatusBadRequest, details)
	}
	return true, nil
}

func listingID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("listing_id"), 10, 64)
}

// POST /api/v1/registry/initialize
func (h *Handlers) InitializeRegistry(c *fiber.Ctx) error {
	reg, err := h.Service.InitializeRegistry(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Registry initialized successfully", reg, nil)
}

// POST /api/v1/listings
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	var body createListingRequest
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	typ, err := domain.ParseListingType(body.ListingType)
	if err != nil {
		return response.FromError(c, err)
	}
	listing, err := h.Service.CreateListing(c.UserContext(), middleware.GetIdentity(c), domain.ListingParams{
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
		HeightFrom:   body.HeightFrom,
		HeightTo:     body.HeightTo,
		AreaSqm:      body.AreaSqm,
		Price:        body.Price,
		ListingType:  typ,
		DurationDays: body.DurationDays,
		City:         body.City,
		Country:      body.Country,
		MetadataURI:  body.MetadataURI,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

// PATCH /api/v1/listings/:listing_id/price
func (h *Handlers) UpdatePrice(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	var body updatePriceRequest
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	listing, err := h.Service.UpdatePrice(c.UserContext(), middleware.GetIdentity(c), id, body.Price)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Price updated successfully", listing, nil)
}

// POST /api/v1/listings/:listing_id/purchase
func (h *Handlers) Purchase(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.PurchaseAirRights(c.UserContext(), middleware.GetIdentity(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Air rights purchased successfully", res, nil)
}

// POST /api/v1/listings/:listing_id/lease
func (h *Handlers) Lease(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.LeaseAirRights(c.UserContext(), middleware.GetIdentity(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Air rights leased successfully", res, nil)
}

// POST /api/v1/listings/:listing_id/cancel
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.CancelListing(c.UserContext(), middleware.GetIdentity(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing cancelled successfully", listing, nil)
}

// POST /api/v1/accounts/fund
func (h *Handlers) FundAccount(c *fiber.Ctx) error {
	var body fundRequest
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	owner, err := domain.ParseIdentity(body.Owner)
	if err != nil {
		return response.FromError(c, err)
	}
	acct, err := h.Service.FundAccount(c.UserContext(), middleware.GetIdentity(c), owner, body.Amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Account funded successfully", acct, nil)
}
