package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
)

// StaffHandler empleados del negocio y vista propia del empleado.
type StaffHandler struct {
	uc *usecase.StaffUseCase
	v  *Validator
}

// NewStaffHandler construye el handler inyectando el caso de uso.
func NewStaffHandler(uc *usecase.StaffUseCase, v *Validator) *StaffHandler {
	return &StaffHandler{uc: uc, v: v}
}

// List GET /api/staff?branch_id=&active=&limit=&offset=
func (h *StaffHandler) List(c *fiber.Ctx) error {
	var in dto.StaffListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(CodeInvalidQuery, "parámetros de consulta inválidos")
	}
	if err := h.v.Struct(in); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), GetBizContext(c).BizID, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// InitSchedule POST /api/staff/:id/schedule/init
func (h *StaffHandler) InitSchedule(c *fiber.Ctx) error {
	out, err := h.uc.InitSchedule(c.UserContext(), GetBizContext(c).BizID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Me GET /api/staff/me
func (h *StaffHandler) Me(c *fiber.Ctx) error {
	return c.JSON(usecase.StaffContextResponse(GetStaffContext(c)))
}

// MyBookings GET /api/staff/me/bookings?date=YYYY-MM-DD
func (h *StaffHandler) MyBookings(c *fiber.Ctx) error {
	var in dto.BookingListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(CodeInvalidQuery, "parámetros de consulta inválidos")
	}
	if err := h.v.Struct(in); err != nil {
		return err
	}
	out, err := h.uc.MyBookings(c.UserContext(), GetStaffContext(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
