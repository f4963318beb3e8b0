package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
)

// BookingHandler reservas de clientes y agenda del negocio.
type BookingHandler struct {
	uc *usecase.BookingUseCase
	v  *Validator
}

// NewBookingHandler construye el handler inyectando el caso de uso.
func NewBookingHandler(uc *usecase.BookingUseCase, v *Validator) *BookingHandler {
	return &BookingHandler{uc: uc, v: v}
}

// Hold POST /api/bookings/hold (header opcional Idempotency-Key)
func (h *BookingHandler) Hold(c *fiber.Ctx) error {
	var in dto.HoldBookingRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(CodeInvalidBody, "cuerpo inválido")
	}
	if err := h.v.Struct(in); err != nil {
		return err
	}
	key := strings.TrimSpace(c.Get(headerIdempotencyKey))
	if len(key) > maxIdempotencyKeyLength {
		return badRequest(CodeValidation, "Idempotency-Key demasiado larga")
	}
	out, err := h.uc.Hold(c.UserContext(), GetUser(c).ID, key, in)
	if err != nil {
		return err
	}
	status := fiber.StatusCreated
	if out.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}

// Confirm POST /api/bookings/:id/confirm
func (h *BookingHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.uc.Confirm(c.UserContext(), GetUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// List GET /api/bookings?date=&branch_id=&staff_id=
func (h *BookingHandler) List(c *fiber.Ctx) error {
	var in dto.BookingListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(CodeInvalidQuery, "parámetros de consulta inválidos")
	}
	if err := h.v.Struct(in); err != nil {
		return err
	}
	out, err := h.uc.ListForBiz(c.UserContext(), GetBizContext(c).BizID, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
