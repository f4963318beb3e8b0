package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva (deben coincidir con el CHECK de bookings.status).
const (
	BookingStatusHold      = "hold"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking reserva de un servicio con un empleado en una franja horaria.
// Las transiciones hold -> confirmed las hace la base de datos (hold_slot / confirm_booking).
type Booking struct {
	ID          string
	BizID       string
	BranchID    string
	ServiceID   string
	StaffID     string
	ClientID    *string
	StartAt     time.Time
	EndAt       time.Time
	Status      string
	HoldExpires *time.Time
	Price       decimal.Decimal
	CreatedAt   time.Time
}

// HoldSlotInput parámetros de hold_slot.
type HoldSlotInput struct {
	BizID     string
	BranchID  string
	ServiceID string
	StaffID   string
	ClientID  string
	StartAt   time.Time
}

// HoldResult resultado de hold_slot: reserva temporal con vencimiento y precio del servicio.
type HoldResult struct {
	BookingID string
	ExpiresAt time.Time
	Price     decimal.Decimal
}
