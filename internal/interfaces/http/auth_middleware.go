package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/bizctx"
	"github.com/jhoicas/Agenda-api/internal/application/session"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// Locals keys con el resultado de la autenticación y de los resolvers.
// Viven solo lo que dura la petición.
const (
	LocalUser         = "user"
	LocalBizContext   = "biz_context"
	LocalStaffContext = "staff_context"
)

// BearerToken extrae el token de "Authorization: Bearer <token>" ("" si no hay).
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate resuelve el usuario de la sesión con el proveedor y lo guarda en Locals.
// Sin sesión válida responde 401 NOT_AUTHENTICATED.
func Authenticate(sessions session.Accessor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := sessions.CurrentUser(c.UserContext(), BearerToken(c))
		if err != nil {
			return fmt.Errorf("sesión: %w", err)
		}
		if user == nil {
			return domain.NewContextError(domain.CodeNotAuthenticated, "sesión requerida")
		}
		c.Locals(LocalUser, user)
		return c.Next()
	}
}

// RequireBizContext resuelve el negocio del usuario. Debe usarse DESPUÉS de Authenticate.
func RequireBizContext(resolver *bizctx.BizResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return domain.NewContextError(domain.CodeNotAuthenticated, "sesión requerida")
		}
		bc, err := resolver.ResolveForUser(c.UserContext(), user)
		if err != nil {
			return err
		}
		c.Locals(LocalBizContext, bc)
		return c.Next()
	}
}

// RequireStaffContext resuelve el registro de empleado del usuario. Debe usarse DESPUÉS de Authenticate.
func RequireStaffContext(resolver *bizctx.StaffResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return domain.NewContextError(domain.CodeNotAuthenticated, "sesión requerida")
		}
		sc, err := resolver.ResolveForUser(c.UserContext(), user)
		if err != nil {
			return err
		}
		c.Locals(LocalStaffContext, sc)
		return c.Next()
	}
}

// RequireBizRole exige uno de los roles indicados en el negocio resuelto (los super-admin pasan siempre).
// Debe usarse DESPUÉS de RequireBizContext.
//
// Comportamiento:
//   - 403 NO_BIZ_ACCESS → sin contexto de negocio o rol insuficiente.
func RequireBizRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		bc := GetBizContext(c)
		if bc == nil {
			return domain.NewContextError(domain.CodeNoBizAccess, "contexto de negocio requerido")
		}
		if bc.IsSuperAdmin {
			return c.Next()
		}
		if _, ok := allowed[bc.Role]; !ok {
			return domain.NewContextError(domain.CodeNoBizAccess, "rol insuficiente para esta operación")
		}
		return c.Next()
	}
}

// GetUser devuelve el usuario autenticado (nil antes de Authenticate).
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// GetBizContext devuelve el contexto de negocio resuelto (nil antes de RequireBizContext).
func GetBizContext(c *fiber.Ctx) *bizctx.BizContext {
	bc, _ := c.Locals(LocalBizContext).(*bizctx.BizContext)
	return bc
}

// GetStaffContext devuelve el contexto de staff resuelto (nil antes de RequireStaffContext).
func GetStaffContext(c *fiber.Ctx) *bizctx.StaffContext {
	sc, _ := c.Locals(LocalStaffContext).(*bizctx.StaffContext)
	return sc
}
