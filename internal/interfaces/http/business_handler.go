package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	"github.com/jhoicas/Agenda-api/internal/domain"
)

// BusinessHandler contexto de negocio del usuario y consulta pública de negocios.
type BusinessHandler struct {
	uc *usecase.BusinessUseCase
	v  *Validator
}

// NewBusinessHandler construye el handler inyectando el caso de uso.
func NewBusinessHandler(uc *usecase.BusinessUseCase, v *Validator) *BusinessHandler {
	return &BusinessHandler{uc: uc, v: v}
}

// Context GET /api/me/context
func (h *BusinessHandler) Context(c *fiber.Ctx) error {
	return c.JSON(usecase.ContextResponse(GetBizContext(c)))
}

// ListMine GET /api/me/businesses?limit=&offset=
func (h *BusinessHandler) ListMine(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(CodeInvalidQuery, "parámetros de consulta inválidos")
	}
	if err := h.v.Struct(page); err != nil {
		return err
	}
	out, err := h.uc.ListMine(c.UserContext(), GetUser(c).ID, page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SetCurrent PUT /api/me/current-business
func (h *BusinessHandler) SetCurrent(c *fiber.Ctx) error {
	var in dto.SetCurrentBusinessRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(CodeInvalidBody, "cuerpo inválido")
	}
	if err := h.v.Struct(in); err != nil {
		return err
	}
	if err := h.uc.SetCurrent(c.UserContext(), GetUser(c).ID, in.BizID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "biz_id": in.BizID})
}

// GetBySlug GET /api/businesses/:slug (público)
func (h *BusinessHandler) GetBySlug(c *fiber.Ctx) error {
	out, err := h.uc.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	if out == nil {
		return domain.ErrNotFound
	}
	return c.JSON(out)
}
