package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Agenda-api/internal/application/bizctx"
	"github.com/jhoicas/Agenda-api/internal/application/session"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/authprovider"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Agenda-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Agenda-api/internal/interfaces/http"
	"github.com/jhoicas/Agenda-api/pkg/config"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("auth_mode", cfg.Auth.Mode).
		Msg("iniciando aplicación")

	ctx := context.Background()
	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	businessRepo := postgres.NewBusinessRepository(pool)
	currentRepo := postgres.NewCurrentBusinessRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	staffRepo := postgres.NewStaffRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)

	var sessions session.Accessor
	switch cfg.Auth.Mode {
	case config.AuthModeRemote:
		sessions = authprovider.NewRemoteAccessor(cfg.Auth, log)
	default:
		jwtAccessor, err := authprovider.NewJWTAccessor(cfg.Auth, log)
		if err != nil {
			log.Fatal().Err(err).Msg("validación de tokens")
		}
		sessions = jwtAccessor
	}

	// Idempotencia de reservas: solo con Redis configurado.
	var idem repository.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = infraredis.NewIdempotencyStore(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: Idempotency-Key desactivado")
	}

	bizResolver := bizctx.NewBizResolver(bizctx.BizResolverDeps{
		Sessions:       sessions,
		Admins:         roleRepo,
		Businesses:     businessRepo,
		Current:        currentRepo,
		Roles:          roleRepo,
		DefaultBizSlug: cfg.Tenancy.DefaultBizSlug,
		Log:            log,
	})
	staffResolver := bizctx.NewStaffResolver(sessions, staffRepo, roleRepo, log)

	businessUC := usecase.NewBusinessUseCase(businessRepo, currentRepo, roleRepo, roleRepo)
	staffUC := usecase.NewStaffUseCase(staffRepo, bookingRepo)
	bookingUC := usecase.NewBookingUseCase(bookingRepo, idem,
		time.Duration(cfg.Redis.IdempotencyTTLMinutes)*time.Minute, log)

	app := httpRouter.NewApp(cfg.App.Name, log)
	httpRouter.Router(app, httpRouter.RouterDeps{
		Sessions:      sessions,
		BizResolver:   bizResolver,
		StaffResolver: staffResolver,
		BusinessUC:    businessUC,
		StaffUC:       staffUC,
		BookingUC:     bookingUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
