// Package session define el puerto hacia el proveedor externo de autenticación.
package session

import (
	"context"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// Accessor resuelve el usuario de la sesión a partir del access token.
// Devuelve (nil, nil) cuando no hay sesión válida (token vacío, inválido o expirado)
// y error solo ante fallos del proveedor.
type Accessor interface {
	CurrentUser(ctx context.Context, accessToken string) (*entity.User, error)
}
