package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldBookingRequest entrada de POST /api/bookings/hold.
type HoldBookingRequest struct {
	BizID     string    `json:"biz_id" validate:"required,uuid"`
	BranchID  string    `json:"branch_id" validate:"required,uuid"`
	ServiceID string    `json:"service_id" validate:"required,uuid"`
	StaffID   string    `json:"staff_id" validate:"required,uuid"`
	StartAt   time.Time `json:"start_at" validate:"required"`
}

// HoldBookingResponse reserva temporal creada por hold_slot.
type HoldBookingResponse struct {
	Envelope
	BookingID string          `json:"booking_id"`
	ExpiresAt time.Time       `json:"expires_at"`
	Price     decimal.Decimal `json:"price"`
	Replayed  bool            `json:"replayed,omitempty"`
}

// BookingListRequest filtros de los listados de reservas. Date en formato YYYY-MM-DD (UTC).
type BookingListRequest struct {
	Date     string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	BranchID string `query:"branch_id" validate:"omitempty,uuid"`
	StaffID  string `query:"staff_id" validate:"omitempty,uuid"`
}

// BookingResponse salida de una reserva.
type BookingResponse struct {
	ID            string          `json:"id"`
	BizID         string          `json:"biz_id"`
	BranchID      string          `json:"branch_id"`
	ServiceID     string          `json:"service_id"`
	StaffID       string          `json:"staff_id"`
	ClientID      *string         `json:"client_id,omitempty"`
	StartAt       time.Time       `json:"start_at"`
	EndAt         time.Time       `json:"end_at"`
	Status        string          `json:"status"`
	HoldExpiresAt *time.Time      `json:"hold_expires_at,omitempty"`
	Price         decimal.Decimal `json:"price"`
}

// BookingDetailResponse una reserva dentro del sobre.
type BookingDetailResponse struct {
	Envelope
	Booking BookingResponse `json:"booking"`
}

// BookingListResponse reservas del negocio o del empleado.
type BookingListResponse struct {
	Envelope
	Items []BookingResponse `json:"items"`
}
