package usecase

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// idemPendingTTL vida de una reserva de clave sin respuesta (proceso caído a mitad del hold).
const idemPendingTTL = time.Minute

// BookingUseCase reservas de clientes. El bloqueo de franjas lo hacen hold_slot / confirm_booking.
type BookingUseCase struct {
	bookings repository.BookingRepository
	idem     repository.IdempotencyStore // nil = sin idempotencia
	idemTTL  time.Duration
	log      *logger.Logger
}

// NewBookingUseCase construye el caso de uso. idem puede ser nil.
func NewBookingUseCase(bookings repository.BookingRepository, idem repository.IdempotencyStore, idemTTL time.Duration, log *logger.Logger) *BookingUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if idemTTL <= 0 {
		idemTTL = 30 * time.Minute
	}
	return &BookingUseCase{bookings: bookings, idem: idem, idemTTL: idemTTL, log: log.Named("bookings")}
}

// Hold reserva temporalmente una franja para el cliente. Con idempotencyKey, la misma clave
// y el mismo cuerpo devuelven la respuesta original; otro cuerpo da domain.ErrIdempotencyReused
// y una petición con la misma clave aún en curso da domain.ErrIdempotencyInProgress.
// La clave se reserva antes de llamar a hold_slot y se libera si el hold falla.
func (uc *BookingUseCase) Hold(ctx context.Context, clientID, idempotencyKey string, in dto.HoldBookingRequest) (*dto.HoldBookingResponse, error) {
	in.StartAt = in.StartAt.UTC()
	reserved := false
	key := clientID + ":" + idempotencyKey
	fp := fingerprint(in)

	if uc.idem != nil && idempotencyKey != "" {
		existing, ok, err := uc.idem.Reserve(ctx, key, fp, idemPendingTTL)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Str("user_id", clientID).Msg("idempotencia no disponible")
		case ok:
			reserved = true
		default:
			return uc.replay(existing, fp)
		}
	}

	res, err := uc.bookings.HoldSlot(ctx, entity.HoldSlotInput{
		BizID:     in.BizID,
		BranchID:  in.BranchID,
		ServiceID: in.ServiceID,
		StaffID:   in.StaffID,
		ClientID:  clientID,
		StartAt:   in.StartAt,
	})
	if err != nil {
		if reserved {
			if rerr := uc.idem.Release(ctx, key); rerr != nil {
				uc.log.Warn().Err(rerr).Str("user_id", clientID).Msg("no se pudo liberar la Idempotency-Key")
			}
		}
		return nil, err
	}
	out := &dto.HoldBookingResponse{
		Envelope:  dto.Success(),
		BookingID: res.BookingID,
		ExpiresAt: res.ExpiresAt,
		Price:     res.Price,
	}

	if reserved {
		payload, _ := json.Marshal(out)
		if err := uc.idem.Complete(ctx, key, repository.IdempotencyRecord{Fingerprint: fp, Payload: payload}, uc.idemTTL); err != nil {
			uc.log.Warn().Err(err).Str("user_id", clientID).Str("booking_id", res.BookingID).Msg("no se pudo guardar la respuesta idempotente")
		}
	}
	return out, nil
}

// replay resuelve una clave ya tomada: otro cuerpo, petición en curso o respuesta guardada.
func (uc *BookingUseCase) replay(rec *repository.IdempotencyRecord, fp string) (*dto.HoldBookingResponse, error) {
	if rec != nil && rec.Fingerprint != fp {
		return nil, domain.ErrIdempotencyReused
	}
	// nil: la clave expiró entre SET NX y GET; el cliente reintenta
	if rec == nil || rec.Pending() {
		return nil, domain.ErrIdempotencyInProgress
	}
	var out dto.HoldBookingResponse
	if err := json.Unmarshal(rec.Payload, &out); err != nil {
		return nil, fmt.Errorf("idempotency payload: %w", err)
	}
	metrics.IdempotencyReplays.Inc()
	out.Replayed = true
	return &out, nil
}

// Confirm confirma el hold del cliente. Un id mal formado se trata como inexistente.
func (uc *BookingUseCase) Confirm(ctx context.Context, clientID, bookingID string) (*dto.BookingDetailResponse, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, domain.ErrNotFound
	}
	b, err := uc.bookings.ConfirmBooking(ctx, bookingID, clientID)
	if err != nil {
		return nil, err
	}
	return &dto.BookingDetailResponse{Envelope: dto.Success(), Booking: bookingToResponse(b)}, nil
}

// ListForBiz reservas no canceladas del negocio resuelto.
func (uc *BookingUseCase) ListForBiz(ctx context.Context, bizID string, in dto.BookingListRequest) (*dto.BookingListResponse, error) {
	day, err := parseDay(in.Date)
	if err != nil {
		return nil, err
	}
	list, err := uc.bookings.ListByBiz(ctx, bizID, repository.BookingFilter{Day: day, BranchID: in.BranchID, StaffID: in.StaffID})
	if err != nil {
		return nil, err
	}
	return bookingList(list), nil
}

// fingerprint identifica el cuerpo de un hold (blake2b-256 del JSON canónico).
func fingerprint(in dto.HoldBookingRequest) string {
	raw, _ := json.Marshal(in)
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	return d, nil
}

func bookingList(list []*entity.Booking) *dto.BookingListResponse {
	items := make([]dto.BookingResponse, 0, len(list))
	for _, b := range list {
		items = append(items, bookingToResponse(b))
	}
	return &dto.BookingListResponse{Envelope: dto.Success(), Items: items}
}

func bookingToResponse(b *entity.Booking) dto.BookingResponse {
	return dto.BookingResponse{
		ID:            b.ID,
		BizID:         b.BizID,
		BranchID:      b.BranchID,
		ServiceID:     b.ServiceID,
		StaffID:       b.StaffID,
		ClientID:      b.ClientID,
		StartAt:       b.StartAt,
		EndAt:         b.EndAt,
		Status:        b.Status,
		HoldExpiresAt: b.HoldExpires,
		Price:         b.Price,
	}
}
