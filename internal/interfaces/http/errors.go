package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// respondError traduce errores de dominio a status y código HTTP.
// Los errores no reconocidos se registran y responden 500 sin filtrar el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, body := classify(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", requestID(c)).
			Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, dto.ErrorResponse) {
	var (
		dup        *domain.DuplicateIdentifierError
		notDef     *domain.NotDefectiveError
		transition *domain.TransitionError
		stateErr   *domain.StateError
		version    *domain.VersionConflictError
		field      *domain.FieldError
		fiberErr   *fiber.Error
	)
	msg := err.Error()
	switch {
	case errors.As(err, &dup):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE_IDENTIFIER", Message: msg,
			Details: fiber.Map{"field": dup.Field, "value": dup.Value}}
	case errors.As(err, &notDef):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "NOT_DEFECTIVE", Message: msg,
			Details: fiber.Map{"offenders": notDef.Offenders}}
	case errors.As(err, &transition):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: msg,
			Details: fiber.Map{"from": transition.From, "to": transition.To}}
	case errors.As(err, &stateErr):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_STATE", Message: msg,
			Details: fiber.Map{"state": stateErr.State, "operation": stateErr.Operation}}
	case errors.As(err, &version):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: msg,
			Details: fiber.Map{"expected_version": version.Expected, "actual_version": version.Actual}}
	case errors.As(err, &field):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: validationCode(field.Err), Message: msg,
			Details: fiber.Map{"field": field.Field}}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: msg}
	case errors.Is(err, domain.ErrEmptySelection),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: validationCode(err), Message: msg}
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: msg}
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_STATE", Message: msg}
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: msg}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: msg}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: msg}
	case errors.As(err, &fiberErr):
		return fiberErr.Code, dto.ErrorResponse{Code: "HTTP_" + strconv.Itoa(fiberErr.Code), Message: fiberErr.Message}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"}
}

func validationCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return "MISSING_FIELD"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrEmptySelection):
		return "EMPTY_SELECTION"
	}
	return "INVALID_INPUT"
}

// ErrorHandler manejador global de Fiber: errores que escapan de los handlers.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, log, err)
	}
}

// respondDeletion 200 si se borró; 409 REQUIRES_CONFIRMATION con la muestra si no.
func respondDeletion(c *fiber.Ctx, out *dto.DeletionResponse) error {
	if out.RequiresConfirmation {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "REQUIRES_CONFIRMATION",
			Message: "el borrado afecta equipos dependientes; reintente con force=true y una estrategia",
			Details: out,
		})
	}
	return c.JSON(out)
}

func badBody() error {
	return domain.Invalid("body", "cuerpo JSON inválido")
}

// paramID lee un ID numérico positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "debe ser un entero positivo")
	}
	return id, nil
}

func badQuery() error {
	return domain.Invalid("query", "parámetros de consulta inválidos")
}
