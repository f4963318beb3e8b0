package repository

import (
	"context"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// RoleRepository define el puerto de lectura/escritura de roles de usuario.
type RoleRepository interface {
	// ListUserRoles devuelve todas las filas user_roles del usuario con su clave de rol resuelta.
	ListUserRoles(ctx context.Context, userID string) ([]entity.UserRole, error)
	// HasRoleIn informa si el usuario tiene alguno de roleKeys en el negocio bizID.
	HasRoleIn(ctx context.Context, userID, bizID string, roleKeys []string) (bool, error)
	// RoleIDByKey devuelve el id del rol con esa clave ("" si no existe).
	RoleIDByKey(ctx context.Context, key string) (string, error)
	HasUserRole(ctx context.Context, userID, bizID, roleID string) (bool, error)
	// InsertUserRole devuelve domain.ErrDuplicate si la fila ya existe.
	InsertUserRole(ctx context.Context, role entity.UserRole) error
}

// AdminRepository expone los chequeos de plataforma implementados como procedimientos remotos.
type AdminRepository interface {
	IsSuperAdmin(ctx context.Context, userID string) (bool, error)
}
