package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/metrics"
)

var _ repository.BookingRepository = (*BookingRepo)(nil)

const bookingColumns = `id::text, biz_id::text, branch_id::text, service_id::text, staff_id::text,
	client_id::text, start_at, end_at, status, hold_expires_at, price, created_at`

// BookingRepo adapta las reservas y los procedimientos hold_slot / confirm_booking.
type BookingRepo struct {
	db DBTX
}

// NewBookingRepository construye el adaptador de reservas.
func NewBookingRepository(db DBTX) *BookingRepo {
	return &BookingRepo{db: db}
}

// HoldSlot invoca hold_slot. El bloqueo y la detección de solapes viven en el procedimiento.
func (r *BookingRepo) HoldSlot(ctx context.Context, in entity.HoldSlotInput) (*entity.HoldResult, error) {
	const query = `
		SELECT booking_id::text, expires_at, price
		FROM hold_slot($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5::uuid, $6::timestamptz)`
	var res entity.HoldResult
	err := r.db.QueryRow(ctx, query, in.BizID, in.BranchID, in.ServiceID, in.StaffID, in.ClientID, in.StartAt).
		Scan(&res.BookingID, &res.ExpiresAt, &res.Price)
	if err != nil {
		return nil, rpcFailure("hold_slot", err)
	}
	metrics.BookingRPCs.WithLabelValues("hold_slot", "ok").Inc()
	return &res, nil
}

// ConfirmBooking invoca confirm_booking y devuelve la reserva confirmada.
func (r *BookingRepo) ConfirmBooking(ctx context.Context, bookingID, clientID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM confirm_booking($1::uuid, $2::uuid)`
	b, err := scanBooking(r.db.QueryRow(ctx, query, bookingID, clientID))
	if err != nil {
		return nil, rpcFailure("confirm_booking", err)
	}
	metrics.BookingRPCs.WithLabelValues("confirm_booking", "ok").Inc()
	return b, nil
}

// ListByBiz lista reservas no canceladas del negocio (opcionalmente de un día, sucursal o empleado).
func (r *BookingRepo) ListByBiz(ctx context.Context, bizID string, f repository.BookingFilter) ([]*entity.Booking, error) {
	var from, to *time.Time
	if !f.Day.IsZero() {
		start := f.Day.UTC().Truncate(24 * time.Hour)
		end := start.Add(24 * time.Hour)
		from, to = &start, &end
	}
	if !isUUID(bizID) || (f.BranchID != "" && !isUUID(f.BranchID)) || (f.StaffID != "" && !isUUID(f.StaffID)) {
		return nil, nil
	}
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE biz_id = $1::uuid
		  AND status <> 'cancelled'
		  AND ($2::timestamptz IS NULL OR start_at >= $2)
		  AND ($3::timestamptz IS NULL OR start_at <  $3)
		  AND ($4::uuid IS NULL OR branch_id = $4::uuid)
		  AND ($5::uuid IS NULL OR staff_id = $5::uuid)
		ORDER BY start_at`
	rows, err := r.db.Query(ctx, query, bizID, from, to, optionalUUID(f.BranchID), optionalUUID(f.StaffID))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var list []*entity.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// rpcFailure mapea el error del procedimiento y actualiza la métrica por resultado.
func rpcFailure(op string, err error) error {
	mapped := mapRPCError(err)
	if mapped == nil && isNoRows(err) {
		mapped = domain.ErrNotFound
	}
	if mapped == nil {
		metrics.BookingRPCs.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("rpc %s: %w", op, err)
	}
	metrics.BookingRPCs.WithLabelValues(op, rpcResultLabel(mapped)).Inc()
	return mapped
}

func rpcResultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		return "slot_taken"
	case errors.Is(err, domain.ErrHoldExpired):
		return "hold_expired"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "conflict"
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(&b.ID, &b.BizID, &b.BranchID, &b.ServiceID, &b.StaffID,
		&b.ClientID, &b.StartAt, &b.EndAt, &b.Status, &b.HoldExpires, &b.Price, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
