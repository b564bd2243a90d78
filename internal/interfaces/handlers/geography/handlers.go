package geography

import (
	geosvc "airledger-backend/internal/application/geography"
	"airledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Table *geosvc.Table
}

// GET /api/v1/geography
func (h *Handlers) List(c *fiber.Ctx) error {
	countries := h.Table.Countries()
	return response.List(c, "Geography fetched successfully", countries)
}

// GET /api/v1/geography/:code
func (h *Handlers) Get(c *fiber.Ctx) error {
	country, ok := h.Table.Country(c.Params("code"))
	if !ok {
		return response.Error(c, "Country not found", fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Country fetched successfully", country, nil)
}
