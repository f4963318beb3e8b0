package repository

import (
	"context"
	"encoding/json"
	"time"
)

// IdempotencyRecord respuesta guardada para una Idempotency-Key.
// Fingerprint identifica el cuerpo de la petición original. Sin Payload la clave está
// reservada por una petición que aún no terminó.
type IdempotencyRecord struct {
	Fingerprint string          `json:"fingerprint"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// Pending informa si la petición dueña de la clave sigue en curso.
func (r *IdempotencyRecord) Pending() bool {
	return r != nil && len(r.Payload) == 0
}

// IdempotencyStore guarda respuestas de operaciones no idempotentes (hold de reservas).
// Flujo: Reserve antes de ejecutar, Complete con el resultado, Release si la operación falla.
type IdempotencyStore interface {
	// Get devuelve (nil, nil) si la clave no existe o expiró.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Reserve crea la clave con un registro pendiente solo si no existe (SET NX).
	// Si ya existía devuelve (registro existente, false); el registro puede ser nil si expiró entre medias.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*IdempotencyRecord, bool, error)
	// Complete sobrescribe la reserva con la respuesta final.
	Complete(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) error
	// Release borra la clave para que un reintento vuelva a ejecutar la operación.
	Release(ctx context.Context, key string) error
}
