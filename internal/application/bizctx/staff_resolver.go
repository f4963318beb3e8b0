package bizctx

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/Agenda-api/internal/application/session"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// StaffContext identidad de empleado del usuario de la sesión.
type StaffContext struct {
	UserID   string
	StaffID  string
	BizID    string
	BranchID string
}

// StaffResolver resuelve el registro de staff activo del usuario y repara su rol "staff".
type StaffResolver struct {
	sessions session.Accessor
	staff    repository.StaffRepository
	roles    repository.RoleRepository
	log      *logger.Logger
}

// NewStaffResolver construye el resolver de staff.
func NewStaffResolver(sessions session.Accessor, staff repository.StaffRepository, roles repository.RoleRepository, log *logger.Logger) *StaffResolver {
	if log == nil {
		log = logger.Nop()
	}
	return &StaffResolver{sessions: sessions, staff: staff, roles: roles, log: log}
}

// Resolve devuelve el StaffContext o un *domain.ContextError (NOT_AUTHENTICATED / NO_STAFF_RECORD).
// Como efecto lateral intenta crear la fila user_roles (usuario, negocio, staff) si falta;
// ese intento nunca hace fallar la resolución.
func (r *StaffResolver) Resolve(ctx context.Context, accessToken string) (*StaffContext, error) {
	user, err := r.sessions.CurrentUser(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("staffctx: sesión: %w", err)
	}
	if user == nil {
		return nil, domain.NewContextError(domain.CodeNotAuthenticated, "sesión requerida")
	}
	return r.ResolveForUser(ctx, user)
}

// ResolveForUser ejecuta la resolución para un usuario ya autenticado.
func (r *StaffResolver) ResolveForUser(ctx context.Context, user *entity.User) (*StaffContext, error) {
	rows, err := r.staff.ListActiveByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("staffctx: staff activo: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.NewContextError(domain.CodeNoStaffRecord, "el usuario no tiene un registro de empleado activo")
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	s := rows[0]

	r.ensureStaffRole(ctx, user.ID, s)

	return &StaffContext{
		UserID:   user.ID,
		StaffID:  s.ID,
		BizID:    s.BizID,
		BranchID: s.BranchID,
	}, nil
}

// ensureStaffRole intenta, registra y sigue: cualquier fallo queda solo en logs y métricas.
func (r *StaffResolver) ensureStaffRole(ctx context.Context, userID string, s *entity.Staff) {
	log := r.log.Zerolog().With().
		Str("user_id", userID).
		Str("staff_id", s.ID).
		Str("biz_id", s.BizID).
		Logger()

	roleID, err := r.roles.RoleIDByKey(ctx, entity.RoleStaff)
	if err != nil {
		metrics.StaffRoleRepairs.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("no se pudo leer el rol staff")
		return
	}
	if roleID == "" {
		metrics.StaffRoleRepairs.WithLabelValues("skipped").Inc()
		log.Warn().Msg("rol staff no existe en la tabla roles, se omite la reparación")
		return
	}

	has, err := r.roles.HasUserRole(ctx, userID, s.BizID, roleID)
	if err != nil {
		metrics.StaffRoleRepairs.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("no se pudo verificar el rol staff del usuario")
		return
	}
	if has {
		metrics.StaffRoleRepairs.WithLabelValues("present").Inc()
		return
	}

	bizID := s.BizID
	err = r.roles.InsertUserRole(ctx, entity.UserRole{UserID: userID, BizID: &bizID, RoleID: roleID, RoleKey: entity.RoleStaff})
	switch {
	case err == nil:
		metrics.StaffRoleRepairs.WithLabelValues("inserted").Inc()
		log.Info().Msg("rol staff asignado automáticamente")
	case errors.Is(err, domain.ErrDuplicate):
		// otra petición concurrente lo insertó primero
		metrics.StaffRoleRepairs.WithLabelValues("race").Inc()
		log.Debug().Msg("rol staff ya insertado por otra petición")
	default:
		metrics.StaffRoleRepairs.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("no se pudo asignar el rol staff")
	}
}
