package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Agenda-api/internal/application/bizctx"
	"github.com/jhoicas/Agenda-api/internal/application/session"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sessions      session.Accessor
	BizResolver   *bizctx.BizResolver
	StaffResolver *bizctx.StaffResolver
	BusinessUC    *usecase.BusinessUseCase
	StaffUC       *usecase.StaffUseCase
	BookingUC     *usecase.BookingUseCase
}

// NewApp crea la app Fiber con recover, log de peticiones, el manejador de errores en sobre, /health y /metrics.
func NewApp(name string, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(RequestLogger(log))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "status": "ok", "service": name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	v := NewValidator()
	api := app.Group("/api")

	auth := Authenticate(deps.Sessions)
	biz := RequireBizContext(deps.BizResolver)
	staffCtx := RequireStaffContext(deps.StaffResolver)

	businessHandler := NewBusinessHandler(deps.BusinessUC, v)
	staffHandler := NewStaffHandler(deps.StaffUC, v)
	bookingHandler := NewBookingHandler(deps.BookingUC, v)

	// Negocios (público)
	api.Get("/businesses/:slug", businessHandler.GetBySlug)

	// Contexto del usuario
	me := api.Group("/me", auth)
	me.Get("/context", biz, businessHandler.Context)
	me.Get("/businesses", businessHandler.ListMine)
	me.Put("/current-business", businessHandler.SetCurrent)

	// Staff: vista propia (contexto de staff) y gestión (contexto de negocio)
	staff := api.Group("/staff", auth)
	staff.Get("/me", staffCtx, staffHandler.Me)
	staff.Get("/me/bookings", staffCtx, staffHandler.MyBookings)
	staff.Get("/", biz, staffHandler.List)
	staff.Post("/:id/schedule/init", biz, RequireBizRole(entity.RoleOwner, entity.RoleAdmin), staffHandler.InitSchedule)

	// Reservas
	bookings := api.Group("/bookings", auth)
	bookings.Post("/hold", bookingHandler.Hold)
	bookings.Post("/:id/confirm", bookingHandler.Confirm)
	bookings.Get("/", biz, bookingHandler.List)
}
