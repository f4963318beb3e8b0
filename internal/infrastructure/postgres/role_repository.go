package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

var (
	_ repository.RoleRepository  = (*RoleRepo)(nil)
	_ repository.AdminRepository = (*RoleRepo)(nil)
)

// RoleRepo implementa RoleRepository y AdminRepository sobre roles / user_roles / is_super_admin().
type RoleRepo struct {
	db DBTX
}

// NewRoleRepository construye el adaptador de roles.
func NewRoleRepository(db DBTX) *RoleRepo {
	return &RoleRepo{db: db}
}

// ListUserRoles devuelve todas las filas del usuario con la clave del rol resuelta.
func (r *RoleRepo) ListUserRoles(ctx context.Context, userID string) ([]entity.UserRole, error) {
	const query = `
		SELECT ur.user_id::text, ur.biz_id::text, ur.role_id::text, ro.key
		FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id
		WHERE ur.user_id = $1::uuid`
	if !isUUID(userID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	defer rows.Close()

	var list []entity.UserRole
	for rows.Next() {
		var ur entity.UserRole
		if err := rows.Scan(&ur.UserID, &ur.BizID, &ur.RoleID, &ur.RoleKey); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		list = append(list, ur)
	}
	return list, rows.Err()
}

// HasRoleIn informa si el usuario tiene alguna de las claves de rol en el negocio.
func (r *RoleRepo) HasRoleIn(ctx context.Context, userID, bizID string, roleKeys []string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN roles ro ON ro.id = ur.role_id
			 WHERE ur.user_id = $1::uuid
			   AND ur.biz_id  = $2::uuid
			   AND ro.key = ANY($3::text[])
		)`
	if !isUUID(userID) || !isUUID(bizID) {
		return false, nil
	}
	var ok bool
	if err := r.db.QueryRow(ctx, query, userID, bizID, roleKeys).Scan(&ok); err != nil {
		return false, fmt.Errorf("check role in business: %w", err)
	}
	return ok, nil
}

// RoleIDByKey devuelve el id del rol o "" si la clave no existe.
func (r *RoleRepo) RoleIDByKey(ctx context.Context, key string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `SELECT id::text FROM roles WHERE key = $1`, key).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("get role %s: %w", key, err)
	}
	return id, nil
}

// HasUserRole informa si existe la fila (usuario, negocio, rol).
func (r *RoleRepo) HasUserRole(ctx context.Context, userID, bizID, roleID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM user_roles
			 WHERE user_id = $1::uuid AND biz_id = $2::uuid AND role_id = $3::uuid
		)`
	if !isUUID(userID) || !isUUID(bizID) || !isUUID(roleID) {
		return false, nil
	}
	var ok bool
	if err := r.db.QueryRow(ctx, query, userID, bizID, roleID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check user role: %w", err)
	}
	return ok, nil
}

// InsertUserRole inserta la asignación. El índice único convierte las carreras en domain.ErrDuplicate.
func (r *RoleRepo) InsertUserRole(ctx context.Context, ur entity.UserRole) error {
	const query = `INSERT INTO user_roles (user_id, biz_id, role_id) VALUES ($1::uuid, $2::uuid, $3::uuid)`
	if _, err := r.db.Exec(ctx, query, ur.UserID, ur.BizID, ur.RoleID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user role: %w", err)
	}
	return nil
}

// IsSuperAdmin invoca el procedimiento is_super_admin(uuid).
func (r *RoleRepo) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `SELECT is_super_admin($1::uuid)`, userID).Scan(&ok); err != nil {
		if mapped := mapRPCError(err); mapped == domain.ErrNotFound {
			// id de usuario que no es uuid: no puede ser super-admin
			return false, nil
		}
		return false, fmt.Errorf("rpc is_super_admin: %w", err)
	}
	return ok, nil
}
