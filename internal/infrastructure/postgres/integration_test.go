//go:build integration

package postgres_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Agenda-api/internal/application/bizctx"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Agenda-api/pkg/config"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// setupDB levanta PostgreSQL en un contenedor, aplica las migraciones y devuelve el pool.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		tcpostgres.WithDatabase("agenda_test"),
		tcpostgres.WithUsername("agenda"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminar contenedor: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, postgres.Migrate(dsn, logger.Nop()))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	pool *pgxpool.Pool
	t    *testing.T
}

func (f fixture) exec(sql string, args ...any) {
	f.t.Helper()
	_, err := f.pool.Exec(context.Background(), sql, args...)
	require.NoError(f.t, err)
}

func (f fixture) business(slug string, owner *string) string {
	id := uuid.NewString()
	f.exec(`INSERT INTO businesses (id, slug, name, owner_id) VALUES ($1, $2, $3, $4)`, id, slug, slug, owner)
	return id
}

func (f fixture) branch(bizID string) string {
	id := uuid.NewString()
	f.exec(`INSERT INTO branches (id, biz_id, name) VALUES ($1, $2, 'Centro')`, id, bizID)
	return id
}

func (f fixture) role(userID, bizID, key string) {
	f.exec(`INSERT INTO user_roles (user_id, biz_id, role_id)
		SELECT $1, $2, id FROM roles WHERE key = $3`, userID, bizID, key)
}

func (f fixture) staff(bizID, branchID string, userID *string, active bool) string {
	id := uuid.NewString()
	f.exec(`INSERT INTO staff (id, biz_id, branch_id, user_id, full_name, is_active) VALUES ($1, $2, $3, $4, 'Ana', $5)`,
		id, bizID, branchID, userID, active)
	return id
}

func (f fixture) service(bizID string, minutes int, price string) string {
	id := uuid.NewString()
	f.exec(`INSERT INTO services (id, biz_id, name, duration_min, price) VALUES ($1, $2, 'Corte', $3, $4::numeric)`,
		id, bizID, minutes, price)
	return id
}

func newBizResolver(pool *pgxpool.Pool, slug string) *bizctx.BizResolver {
	roles := postgres.NewRoleRepository(pool)
	return bizctx.NewBizResolver(bizctx.BizResolverDeps{
		Admins:         roles,
		Businesses:     postgres.NewBusinessRepository(pool),
		Current:        postgres.NewCurrentBusinessRepository(pool),
		Roles:          roles,
		DefaultBizSlug: slug,
	})
}

func TestIntegration_BizResolver(t *testing.T) {
	pool := setupDB(t)
	f := fixture{pool: pool, t: t}
	ctx := context.Background()

	user := uuid.NewString()
	a := f.business("salon-a", nil)
	b := f.business("salon-b", nil)
	f.role(user, a, entity.RoleManager)
	f.role(user, b, entity.RoleAdmin)
	ids := []string{a, b}
	sort.Strings(ids)

	r := newBizResolver(pool, "kezek")

	got, err := r.ResolveForUser(ctx, &entity.User{ID: user})
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.BizID, "sin puntero gana el menor id")
	assert.Equal(t, bizctx.SourceRoleScan, got.Source)

	require.NoError(t, postgres.NewCurrentBusinessRepository(pool).Set(ctx, user, ids[1]))
	got, err = r.ResolveForUser(ctx, &entity.User{ID: user})
	require.NoError(t, err)
	assert.Equal(t, ids[1], got.BizID)
	assert.Equal(t, bizctx.SourceCurrentBusiness, got.Source)

	// Puntero obsoleto: sin rol ni propiedad vuelve al escaneo
	f.exec(`DELETE FROM user_roles WHERE user_id = $1 AND biz_id = $2`, user, ids[1])
	got, err = r.ResolveForUser(ctx, &entity.User{ID: user})
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.BizID)
}

func TestIntegration_BizResolver_SuperAdminYDueno(t *testing.T) {
	pool := setupDB(t)
	f := fixture{pool: pool, t: t}
	ctx := context.Background()

	admin := uuid.NewString()
	f.exec(`INSERT INTO super_admins (user_id) VALUES ($1)`, admin)
	f.business("otro", nil)
	kezek := f.business("kezek", nil)

	got, err := newBizResolver(pool, "kezek").ResolveForUser(ctx, &entity.User{ID: admin})
	require.NoError(t, err)
	assert.Equal(t, kezek, got.BizID)
	assert.True(t, got.IsSuperAdmin)

	owner := uuid.NewString()
	owned := f.business("propio", &owner)
	got, err = newBizResolver(pool, "kezek").ResolveForUser(ctx, &entity.User{ID: owner})
	require.NoError(t, err)
	assert.Equal(t, owned, got.BizID)
	assert.Equal(t, bizctx.SourceOwner, got.Source)

	_, err = newBizResolver(pool, "kezek").ResolveForUser(ctx, &entity.User{ID: "no-es-uuid"})
	code, ok := domain.ContextCode(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeNoBizAccess, code)
}

func TestIntegration_StaffResolver_ReparaRol(t *testing.T) {
	pool := setupDB(t)
	f := fixture{pool: pool, t: t}
	ctx := context.Background()

	user := uuid.NewString()
	biz := f.business("salon", nil)
	branch := f.branch(biz)
	staffID := f.staff(biz, branch, &user, true)

	roles := postgres.NewRoleRepository(pool)
	r := bizctx.NewStaffResolver(nil, postgres.NewStaffRepository(pool), roles, nil)
	for i := 0; i < 2; i++ {
		got, err := r.ResolveForUser(ctx, &entity.User{ID: user})
		require.NoError(t, err)
		assert.Equal(t, staffID, got.StaffID)
		assert.Equal(t, branch, got.BranchID)
	}

	var n int
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT count(*) FROM user_roles ur JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 AND ur.biz_id = $2 AND r.key = 'staff'`, user, biz).Scan(&n))
	assert.Equal(t, 1, n)

	roleID, err := roles.RoleIDByKey(ctx, entity.RoleStaff)
	require.NoError(t, err)
	err = roles.InsertUserRole(ctx, entity.UserRole{UserID: user, BizID: &biz, RoleID: roleID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestIntegration_Bookings(t *testing.T) {
	pool := setupDB(t)
	f := fixture{pool: pool, t: t}
	ctx := context.Background()

	biz := f.business("salon", nil)
	branch := f.branch(biz)
	staffID := f.staff(biz, branch, nil, true)
	service := f.service(biz, 45, "35000.50")
	client := uuid.NewString()
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	repo := postgres.NewBookingRepository(pool)
	in := entity.HoldSlotInput{BizID: biz, BranchID: branch, ServiceID: service, StaffID: staffID, ClientID: client, StartAt: start}

	hold, err := repo.HoldSlot(ctx, in)
	require.NoError(t, err)
	assert.True(t, hold.Price.Equal(decimal.RequireFromString("35000.50")))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), hold.ExpiresAt, time.Minute)

	overlap := in
	overlap.StartAt = start.Add(30 * time.Minute)
	_, err = repo.HoldSlot(ctx, overlap)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

	_, err = repo.ConfirmBooking(ctx, hold.BookingID, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound, "otro cliente no ve la reserva")

	b, err := repo.ConfirmBooking(ctx, hold.BookingID, client)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, b.Status)
	assert.Nil(t, b.HoldExpires)
	assert.Equal(t, start.Add(45*time.Minute), b.EndAt.UTC())

	again, err := repo.ConfirmBooking(ctx, hold.BookingID, client)
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)

	list, err := repo.ListByBiz(ctx, biz, repository.BookingFilter{Day: start, StaffID: staffID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Hold vencido: se libera la franja y no se puede confirmar
	expired := in
	expired.StartAt = start.Add(3 * time.Hour)
	h2, err := repo.HoldSlot(ctx, expired)
	require.NoError(t, err)
	f.exec(`UPDATE bookings SET hold_expires_at = now() - interval '1 minute' WHERE id = $1`, h2.BookingID)
	_, err = repo.ConfirmBooking(ctx, h2.BookingID, client)
	assert.ErrorIs(t, err, domain.ErrHoldExpired)
	_, err = repo.HoldSlot(ctx, expired)
	assert.NoError(t, err)

	_, err = repo.ConfirmBooking(ctx, "no-es-uuid", client)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegration_StaffSchedule(t *testing.T) {
	pool := setupDB(t)
	f := fixture{pool: pool, t: t}
	ctx := context.Background()

	biz := f.business("salon", nil)
	branch := f.branch(biz)
	active := f.staff(biz, branch, nil, true)
	f.staff(biz, branch, nil, false)

	repo := postgres.NewStaffRepository(pool)
	n, err := repo.InitSchedule(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = repo.InitSchedule(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "los días existentes no se duplican")

	_, err = repo.InitSchedule(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	yes := true
	list, err := repo.ListByBiz(ctx, biz, repository.StaffFilter{Active: &yes}, 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active, list[0].ID)

	all, err := repo.ListByBiz(ctx, biz, repository.StaffFilter{BranchID: branch}, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	missing, err := repo.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntegration_IDsNoUUID_SonInexistentes(t *testing.T) {
	pool := setupDB(t)
	f := fixture{pool: pool, t: t}
	ctx := context.Background()
	biz := f.business("salon-ids", nil)

	businesses := postgres.NewBusinessRepository(pool)
	b, err := businesses.GetByID(ctx, "no-es-uuid")
	require.NoError(t, err)
	assert.Nil(t, b)

	owned, err := businesses.ListOwnedBy(ctx, "no-es-uuid")
	require.NoError(t, err)
	assert.Empty(t, owned)

	list, err := businesses.ListByIDs(ctx, []string{"no-es-uuid", biz})
	require.NoError(t, err)
	require.Len(t, list, 1, "los ids mal formados se descartan, el resto se consulta")
	assert.Equal(t, biz, list[0].ID)

	staff := postgres.NewStaffRepository(pool)
	s, err := staff.GetByID(ctx, "123")
	require.NoError(t, err)
	assert.Nil(t, s)
	byBiz, err := staff.ListByBiz(ctx, biz, repository.StaffFilter{BranchID: "centro"}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, byBiz)

	roles := postgres.NewRoleRepository(pool)
	rs, err := roles.ListUserRoles(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, rs)
	ok, err := roles.HasRoleIn(ctx, "x", biz, bizctx.ManagementRoleKeys)
	require.NoError(t, err)
	assert.False(t, ok)

	current := postgres.NewCurrentBusinessRepository(pool)
	ptr, err := current.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, ptr)
	assert.ErrorIs(t, current.Set(ctx, uuid.NewString(), "no-es-uuid"), domain.ErrNotFound)

	bookings, err := postgres.NewBookingRepository(pool).ListByBiz(ctx, "x", repository.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestIntegration_FiltrosPorUUID_UsanIndice(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()
	_, err = conn.Exec(ctx, `SET enable_seqscan = off`)
	require.NoError(t, err)

	queries := map[string]string{
		"businesses.id":    `EXPLAIN SELECT id FROM businesses WHERE id = $1::uuid`,
		"businesses.owner": `EXPLAIN SELECT id FROM businesses WHERE owner_id = $1::uuid`,
		"staff.user":       `EXPLAIN SELECT id FROM staff WHERE user_id = $1::uuid AND is_active = true`,
		"bookings.biz":     `EXPLAIN SELECT id FROM bookings WHERE biz_id = $1::uuid`,
	}
	for name, q := range queries {
		rows, err := conn.Query(ctx, q, uuid.NewString())
		require.NoError(t, err, name)
		var plan []string
		for rows.Next() {
			var line string
			require.NoError(t, rows.Scan(&line), name)
			plan = append(plan, line)
		}
		rows.Close()
		assert.Contains(t, strings.Join(plan, "\n"), "Index", name)
	}
}
