package handler

import (
	"go-kiosk-pos/internal/service"
	"go-kiosk-pos/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const codeInvalidBody = "INVALID_BODY"

// actorFrom reads the staff identity set by RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{Name: "Unknown"}
	if id, ok := c.Locals("staff_id").(string); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			actor.ID = parsed
		}
	}
	if name, ok := c.Locals("staff_name").(string); ok && name != "" {
		actor.Name = name
	}
	return actor
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

var statusByCode = map[string]int{
	service.ErrEmptyCart.Error():          fiber.StatusBadRequest,
	service.ErrInvalidQuantity.Error():    fiber.StatusBadRequest,
	service.ErrDeltaInvalid.Error():       fiber.StatusBadRequest,
	service.ErrStockInvalid.Error():       fiber.StatusBadRequest,
	service.ErrPriceInvalid.Error():       fiber.StatusBadRequest,
	service.ErrNameRequired.Error():       fiber.StatusBadRequest,
	service.ErrCategoryRequired.Error():   fiber.StatusBadRequest,
	service.ErrItemTypeInvalid.Error():    fiber.StatusBadRequest,
	service.ErrStockNotTracked.Error():    fiber.StatusBadRequest,
	service.ErrValidation.Error():         fiber.StatusBadRequest,
	service.ErrInvalidPINFormat.Error():   fiber.StatusBadRequest,
	service.ErrFullNameRequired.Error():   fiber.StatusBadRequest,
	service.ErrRoleRequired.Error():       fiber.StatusBadRequest,
	service.ErrRootProtected.Error():      fiber.StatusForbidden,
	service.ErrInvalidCredentials.Error(): fiber.StatusUnauthorized,
	service.ErrStaffInactive.Error():      fiber.StatusUnauthorized,
	service.ErrItemNotFound.Error():       fiber.StatusNotFound,
	service.ErrSaleNotFound.Error():       fiber.StatusNotFound,
	service.ErrStaffNotFound.Error():      fiber.StatusNotFound,
	service.ErrReceiptNotFound.Error():    fiber.StatusNotFound,
	service.ErrItemInactive.Error():       fiber.StatusConflict,
	service.ErrOutOfStock.Error():         fiber.StatusConflict,
	service.ErrSKUTaken.Error():           fiber.StatusConflict,
	service.ErrCheckoutTimeout.Error():    fiber.StatusServiceUnavailable,
	service.ErrCheckoutFailed.Error():     fiber.StatusInternalServerError,
}

// fail writes {"error": CODE} with the status for err. Unknown errors are
// logged and reported as fallback.
func fail(c *fiber.Ctx, err error, fallback error) error {
	code := service.ErrorCode(err)
	if status, ok := statusByCode[code]; ok {
		return c.Status(status).JSON(fiber.Map{"error": code})
	}
	if fallback == nil {
		fallback = service.ErrInternal
	}
	logger.Error(c.UserContext()).Err(err).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": codeInvalidBody})
}
