package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// BookingFilter filtros del listado de reservas. Day se interpreta en UTC.
type BookingFilter struct {
	Day      time.Time
	BranchID string
	StaffID  string
}

// BookingRepository define el puerto de reservas. HoldSlot y ConfirmBooking son
// procedimientos transaccionales de la base; su atomicidad no se reimplementa aquí.
type BookingRepository interface {
	// HoldSlot devuelve domain.ErrSlotUnavailable si la franja está ocupada.
	HoldSlot(ctx context.Context, in entity.HoldSlotInput) (*entity.HoldResult, error)
	// ConfirmBooking devuelve domain.ErrNotFound, domain.ErrHoldExpired o domain.ErrSlotUnavailable.
	ConfirmBooking(ctx context.Context, bookingID, clientID string) (*entity.Booking, error)
	ListByBiz(ctx context.Context, bizID string, filter BookingFilter) ([]*entity.Booking, error)
}
