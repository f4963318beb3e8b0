package repository

import (
	"context"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// StaffFilter filtros opcionales del listado de personal.
type StaffFilter struct {
	BranchID string
	Active   *bool
}

// StaffRepository define el puerto de persistencia para Staff.
type StaffRepository interface {
	// ListActiveByUserID devuelve los registros activos del usuario ordenados por id.
	ListActiveByUserID(ctx context.Context, userID string) ([]*entity.Staff, error)
	GetByID(ctx context.Context, id string) (*entity.Staff, error)
	ListByBiz(ctx context.Context, bizID string, filter StaffFilter, limit, offset int) ([]*entity.Staff, error)
	// InitSchedule invoca init_staff_schedule y devuelve cuántas franjas se crearon.
	InitSchedule(ctx context.Context, staffID string) (int, error)
}
