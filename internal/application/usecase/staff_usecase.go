package usecase

import (
	"context"

	"github.com/jhoicas/Agenda-api/internal/application/bizctx"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

// StaffUseCase gestión de empleados dentro del negocio resuelto.
type StaffUseCase struct {
	staff    repository.StaffRepository
	bookings repository.BookingRepository
}

// NewStaffUseCase construye el caso de uso.
func NewStaffUseCase(staff repository.StaffRepository, bookings repository.BookingRepository) *StaffUseCase {
	return &StaffUseCase{staff: staff, bookings: bookings}
}

// StaffContextResponse convierte el contexto de staff en la respuesta de GET /api/staff/me.
func StaffContextResponse(sc *bizctx.StaffContext) dto.StaffContextResponse {
	return dto.StaffContextResponse{
		Envelope: dto.Success(),
		UserID:   sc.UserID,
		StaffID:  sc.StaffID,
		BizID:    sc.BizID,
		BranchID: sc.BranchID,
	}
}

// List lista empleados del negocio con filtros de sucursal y estado.
func (uc *StaffUseCase) List(ctx context.Context, bizID string, in dto.StaffListRequest) (*dto.StaffListResponse, error) {
	page := dto.PageRequest{Limit: in.Limit, Offset: in.Offset}
	page.DefaultPage()

	list, err := uc.staff.ListByBiz(ctx, bizID, repository.StaffFilter{BranchID: in.BranchID, Active: in.Active}, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StaffResponse, 0, len(list))
	for _, s := range list {
		items = append(items, staffToResponse(s))
	}
	return &dto.StaffListResponse{
		Envelope: dto.Success(),
		Items:    items,
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// InitSchedule crea la jornada por defecto de un empleado del negocio.
// Un empleado de otro negocio (o inexistente) da NO_STAFF_ACCESS.
func (uc *StaffUseCase) InitSchedule(ctx context.Context, bizID, staffID string) (*dto.InitScheduleResponse, error) {
	st, err := uc.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if st == nil || st.BizID != bizID {
		return nil, domain.NewContextError(domain.CodeNoStaffAccess, "empleado no encontrado en el negocio")
	}
	created, err := uc.staff.InitSchedule(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	return &dto.InitScheduleResponse{Envelope: dto.Success(), StaffID: st.ID, Created: created}, nil
}

// MyBookings reservas del empleado de la sesión (opcionalmente de un día).
func (uc *StaffUseCase) MyBookings(ctx context.Context, sc *bizctx.StaffContext, in dto.BookingListRequest) (*dto.BookingListResponse, error) {
	day, err := parseDay(in.Date)
	if err != nil {
		return nil, err
	}
	list, err := uc.bookings.ListByBiz(ctx, sc.BizID, repository.BookingFilter{Day: day, StaffID: sc.StaffID})
	if err != nil {
		return nil, err
	}
	return bookingList(list), nil
}

func staffToResponse(s *entity.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        s.ID,
		BizID:     s.BizID,
		BranchID:  s.BranchID,
		UserID:    s.UserID,
		FullName:  s.FullName,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}
