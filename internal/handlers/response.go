package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/logger"
)

type errorBody struct {
	Code    apperrors.Code    `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	IDs     []uint            `json:"ids,omitempty"`
}

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return success(c, fiber.StatusOK, data)
}

// ErrorHandler renders every error returned by a handler. Typed errors keep
// their code and message; anything else is logged and reported as internal.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"error": errorBody{
					Code:    codeForStatus(fiberErr.Code),
					Message: fiberErr.Message,
				},
			})
		}

		appErr, isApp := apperrors.As(err)
		if !isApp || appErr.Code == apperrors.CodeInternal {
			log.Error("request failed", map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"error":  err,
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error": errorBody{
					Code:    apperrors.CodeInternal,
					Message: "internal server error",
				},
			})
		}

		return c.Status(appErr.Status()).JSON(fiber.Map{
			"success": false,
			"error": errorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
				Fields:  appErr.Fields,
				IDs:     appErr.IDs,
			},
		})
	}
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return apperrors.CodeValidation
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case fiber.StatusConflict:
		return apperrors.CodeConflict
	case fiber.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	}
	return apperrors.CodeInternal
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidation("invalid "+name, map[string]string{name: "must be a positive integer"})
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidation("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}
