package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrSlotUnavailable   = errors.New("el horario ya no está disponible")
	ErrHoldExpired       = errors.New("la reserva temporal expiró")
	ErrIdempotencyReused = errors.New("idempotency key reutilizada con otro cuerpo")
	// ErrIdempotencyInProgress otra petición con la misma clave aún no terminó.
	ErrIdempotencyInProgress = errors.New("petición con la misma idempotency key en curso")
)

// Códigos de error de resolución de contexto. Son estables: el cliente los recibe en el campo "error".
const (
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeNoBizAccess      = "NO_BIZ_ACCESS"
	CodeNoStaffRecord    = "NO_STAFF_RECORD"
	CodeNoStaffAccess    = "NO_STAFF_ACCESS"
)

// ContextError es el fallo tipado de los resolvers de contexto (negocio / staff).
// Diagnostics es solo para logs de operación; nunca se devuelve al usuario final.
type ContextError struct {
	Code        string
	Message     string
	Diagnostics map[string]any
}

func (e *ContextError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewContextError construye un ContextError sin diagnósticos.
func NewContextError(code, message string) *ContextError {
	return &ContextError{Code: code, Message: message}
}

// ContextCode devuelve el código si err (o alguno de los que envuelve) es un ContextError.
func ContextCode(err error) (string, bool) {
	var ce *ContextError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}

// IsContextCode informa si err es un ContextError con el código indicado.
func IsContextCode(err error, code string) bool {
	c, ok := ContextCode(err)
	return ok && c == code
}
