package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/validator"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrConflict, fiber.StatusConflict, "CONCURRENCY_CONFLICT"},
}

// statusFor traduce un error de dominio a status HTTP y código.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse según el error de dominio.
// Los 500 se registran y no exponen el detalle.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno en handler de stock")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func invalidQuery(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: msg})
}

func fieldErrors(errs []*validator.ErrorResponse) []dto.FieldError {
	out := make([]dto.FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, dto.FieldError{Field: e.FailedField, Rule: e.Tag, Param: e.Value})
	}
	return out
}

// parseBody lee el JSON y lo valida con los tags `validate`. Si devuelve false
// la respuesta de error ya se escribió en c y el handler debe retornar respErr.
func parseBody(c *fiber.Ctx, out interface{}) (ok bool, respErr error) {
	if err := c.BodyParser(out); err != nil {
		return false, invalidBody(c)
	}
	if errs := validator.ValidateStruct(out); len(errs) > 0 {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: validator.Message(errs), Fields: fieldErrors(errs),
		})
	}
	return true, nil
}

func validateQuery(c *fiber.Ctx, in interface{}) (bool, error) {
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_QUERY", Message: validator.Message(errs), Fields: fieldErrors(errs),
		})
	}
	return true, nil
}
