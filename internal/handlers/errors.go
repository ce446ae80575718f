package handlers

import (
	"backoffice/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Stable machine-readable error codes returned in the "code" field.
const (
	CodeInvalidBody        = "invalid_body"
	CodeValidation         = "validation_error"
	CodeProductNotFound    = "product_not_found"
	CodeInsufficientStock  = "insufficient_stock"
	CodeStoreUnavailable   = "store_unavailable"
	CodeOrderNotFound      = "order_not_found"
	CodeDuplicateSKU       = "duplicate_sku"
	CodeInvalidStatus      = "invalid_status"
	CodeInvalidAdminSecret = "invalid_admin_secret"
	CodeOnboardingDisabled = "onboarding_disabled"
	CodeUserExists         = "user_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInternal           = "internal_error"
)

func badBody(c *fiber.Ctx, err error) error {
	log.WithError(err).WithField("path", c.Path()).Debug("Error parsing request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"code":    CodeInvalidBody,
		"error":   err.Error(),
	})
}

// respondError maps a service error to its status code and JSON body.
func respondError(c *fiber.Ctx, err error) error {
	var (
		verr        *services.ValidationError
		notFound    *services.ProductNotFoundError
		short       *services.InsufficientStockError
		unavailable *services.StoreUnavailableError
	)

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"code":    CodeValidation,
			"errors":  verr.Violations,
		})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message":   err.Error(),
			"code":      CodeProductNotFound,
			"productId": notFound.ProductID,
		})
	case errors.As(err, &short):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   err.Error(),
			"code":      CodeInsufficientStock,
			"productId": short.ProductID,
			"requested": short.Requested,
			"available": short.Available,
		})
	case errors.As(err, &unavailable):
		log.WithError(err).WithField("path", c.Path()).Error("Store unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Store temporarily unavailable, please retry",
			"code":    CodeStoreUnavailable,
			"error":   err.Error(),
		})
	}

	status, code := fiber.StatusInternalServerError, CodeInternal
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		status, code = fiber.StatusNotFound, CodeOrderNotFound
	case errors.Is(err, services.ErrDuplicateSKU):
		status, code = fiber.StatusConflict, CodeDuplicateSKU
	case errors.Is(err, services.ErrInvalidStatus):
		status, code = fiber.StatusBadRequest, CodeInvalidStatus
	case errors.Is(err, services.ErrInvalidAdminSecret):
		status, code = fiber.StatusForbidden, CodeInvalidAdminSecret
	case errors.Is(err, services.ErrOnboardingDisabled):
		status, code = fiber.StatusForbidden, CodeOnboardingDisabled
	case errors.Is(err, services.ErrUserExists):
		status, code = fiber.StatusConflict, CodeUserExists
	case errors.Is(err, services.ErrInvalidCredentials):
		status, code = fiber.StatusUnauthorized, CodeInvalidCredentials
	}
	if status == fiber.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("Unhandled error")
	}
	return c.Status(status).JSON(fiber.Map{
		"message": err.Error(),
		"code":    code,
	})
}
