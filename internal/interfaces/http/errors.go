package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// Códigos de error HTTP fuera de la taxonomía de contexto.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidBody         = "INVALID_BODY"
	CodeInvalidQuery        = "INVALID_QUERY"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeNotFound            = "NOT_FOUND"
	CodeSlotUnavailable     = "SLOT_UNAVAILABLE"
	CodeHoldExpired         = "HOLD_EXPIRED"
	CodeIdempotencyReused   = "IDEMPOTENCY_KEY_REUSED"
	CodeIdempotencyPending  = "IDEMPOTENCY_KEY_IN_PROGRESS"
	CodeDuplicate           = "DUPLICATE"
	CodeConflict            = "CONFLICT"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL"
	messageInternal         = "error interno, intente más tarde"
	headerIdempotencyKey    = "Idempotency-Key"
	maxIdempotencyKeyLength = 255
)

// requestError error de petición con status y código ya decididos (cuerpo o query inválidos).
type requestError struct {
	status  int
	code    string
	message string
}

func (e *requestError) Error() string { return e.code + ": " + e.message }

func badRequest(code, message string) error {
	return &requestError{status: fiber.StatusBadRequest, code: code, message: message}
}

// contextStatus status HTTP de cada código de resolución de contexto.
var contextStatus = map[string]int{
	domain.CodeNotAuthenticated: fiber.StatusUnauthorized,
	domain.CodeNoBizAccess:      fiber.StatusForbidden,
	domain.CodeNoStaffRecord:    fiber.StatusForbidden,
	domain.CodeNoStaffAccess:    fiber.StatusNotFound,
}

// MapError traduce un error a (status, código, mensaje). Los errores desconocidos son 500
// con mensaje genérico: el error original nunca llega al cliente.
func MapError(err error) (int, string, string) {
	var ce *domain.ContextError
	if errors.As(err, &ce) {
		status, ok := contextStatus[ce.Code]
		if !ok {
			status = fiber.StatusForbidden
		}
		return status, ce.Code, ce.Message
	}
	var re *requestError
	if errors.As(err, &re) {
		return re.status, re.code, re.message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			return fe.Code, CodeInternal, messageInternal
		}
		return fe.Code, httpCode(fe.Code), fe.Message
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, CodeInvalidInput, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound, "recurso no encontrado"
	case errors.Is(err, domain.ErrSlotUnavailable):
		return fiber.StatusConflict, CodeSlotUnavailable, domain.ErrSlotUnavailable.Error()
	case errors.Is(err, domain.ErrHoldExpired):
		return fiber.StatusConflict, CodeHoldExpired, domain.ErrHoldExpired.Error()
	case errors.Is(err, domain.ErrIdempotencyReused):
		return fiber.StatusConflict, CodeIdempotencyReused, domain.ErrIdempotencyReused.Error()
	case errors.Is(err, domain.ErrIdempotencyInProgress):
		return fiber.StatusConflict, CodeIdempotencyPending, domain.ErrIdempotencyInProgress.Error()
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, CodeDuplicate, domain.ErrDuplicate.Error()
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, CodeConflict, domain.ErrConflict.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, domain.CodeNotAuthenticated, "sesión requerida"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, CodeForbidden, domain.ErrForbidden.Error()
	}
	return fiber.StatusInternalServerError, CodeInternal, messageInternal
}

func httpCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusBadRequest:
		return CodeInvalidInput
	}
	return http.StatusText(status)
}

// ErrorHandler escribe el sobre {"ok": false, "error", "message"} para cualquier error devuelto
// por handlers o middleware. Los 5xx se registran con método, ruta y error original.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		status, code, message := MapError(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("error no controlado")
		}
		return c.Status(status).JSON(dto.ErrorResponse{OK: false, Error: code, Message: message})
	}
}
