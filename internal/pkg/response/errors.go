package response

import (
	"airledger-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:    fiber.StatusBadRequest,
	domain.KindAuthorization: fiber.StatusForbidden,
	domain.KindNotFound:      fiber.StatusNotFound,
	domain.KindStateConflict: fiber.StatusConflict,
	domain.KindResource:      fiber.StatusPaymentRequired,
}

// StatusFor maps an error to its HTTP status by kind; unclassified errors are 500.
func StatusFor(err error) int {
	if code, ok := statusByKind[domain.KindOf(err)]; ok {
		return code
	}
	return fiber.StatusInternalServerError
}

// FromError sends err in the standard error format. The kind is exposed in
// details so clients can branch without parsing messages; internal errors
// are not echoed back.
func FromError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	code := StatusFor(err)
	message := err.Error()
	if kind == domain.KindInternal {
		message = "Internal Server Error"
	}
	return Error(c, message, code, map[string]interface{}{"kind": kind.String()})
}
