package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

var _ repository.StaffRepository = (*StaffRepo)(nil)

const staffColumns = `id::text, biz_id::text, branch_id::text, user_id::text, full_name, is_active, created_at`

// StaffRepo implementación del puerto StaffRepository sobre PostgreSQL.
type StaffRepo struct {
	db DBTX
}

// NewStaffRepository construye el adaptador de persistencia para empleados.
func NewStaffRepository(db DBTX) *StaffRepo {
	return &StaffRepo{db: db}
}

// ListActiveByUserID devuelve los registros activos del usuario (is_active = true).
func (r *StaffRepo) ListActiveByUserID(ctx context.Context, userID string) ([]*entity.Staff, error) {
	if !isUUID(userID) {
		return nil, nil
	}
	query := `SELECT ` + staffColumns + ` FROM staff WHERE user_id = $1::uuid AND is_active = true ORDER BY id::text`
	return r.list(ctx, "list active staff", query, userID)
}

// GetByID obtiene un empleado por ID.
func (r *StaffRepo) GetByID(ctx context.Context, id string) (*entity.Staff, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1::uuid`
	s, err := scanStaff(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return s, nil
}

// ListByBiz lista empleados del negocio con filtros opcionales de sucursal y estado.
func (r *StaffRepo) ListByBiz(ctx context.Context, bizID string, f repository.StaffFilter, limit, offset int) ([]*entity.Staff, error) {
	if !isUUID(bizID) || (f.BranchID != "" && !isUUID(f.BranchID)) {
		return nil, nil
	}
	query := `SELECT ` + staffColumns + `
		FROM staff
		WHERE biz_id = $1::uuid
		  AND ($2::uuid IS NULL OR branch_id = $2::uuid)
		  AND ($3::boolean IS NULL OR is_active = $3)
		ORDER BY id::text
		LIMIT $4 OFFSET $5`
	return r.list(ctx, "list staff", query, bizID, optionalUUID(f.BranchID), f.Active, limit, offset)
}

// InitSchedule invoca init_staff_schedule(uuid) y devuelve las franjas creadas.
func (r *StaffRepo) InitSchedule(ctx context.Context, staffID string) (int, error) {
	var created int
	if err := r.db.QueryRow(ctx, `SELECT init_staff_schedule($1::uuid)`, staffID).Scan(&created); err != nil {
		if mapped := mapRPCError(err); mapped != nil {
			return 0, mapped
		}
		return 0, fmt.Errorf("rpc init_staff_schedule: %w", err)
	}
	return created, nil
}

func (r *StaffRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Staff, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []*entity.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanStaff(row pgx.Row) (*entity.Staff, error) {
	var s entity.Staff
	err := row.Scan(&s.ID, &s.BizID, &s.BranchID, &s.UserID, &s.FullName, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
