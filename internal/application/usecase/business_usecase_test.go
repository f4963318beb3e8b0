package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agenda-api/internal/application/bizctx"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	userU = "u-0001"
	userV = "u-0002"
	bizB1 = "b-0001"
	bizB2 = "b-0002"
	bizB3 = "b-0003"
)

func strPtr(s string) *string { return &s }

func seedBusinesses() *memory.Store {
	s := memory.NewStore()
	s.AddBusiness(&entity.Business{ID: bizB1, Slug: "salon-bella", Name: "Salón Bella"})
	s.AddBusiness(&entity.Business{ID: bizB2, Slug: "barberia", Name: "Barbería", OwnerID: strPtr(userU)})
	s.AddBusiness(&entity.Business{ID: bizB3, Slug: "kezek", Name: "Kezek"})
	return s
}

func newBusinessUC(s *memory.Store) *usecase.BusinessUseCase {
	return usecase.NewBusinessUseCase(s.Businesses(), s.Current(), s.Roles(), s.Admins())
}

func ids(items []dto.BusinessResponse) []string {
	out := make([]string, 0, len(items))
	for _, b := range items {
		out = append(out, b.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// ListMine
// ──────────────────────────────────────────────────────────────────────────────

func TestBusinessListMine_RolesYPropios(t *testing.T) {
	s := seedBusinesses()
	s.AddUserRole(userU, bizB1, entity.RoleManager)
	s.AddUserRole(userU, bizB2, entity.RoleAdmin) // también es dueño: no se duplica
	s.AddUserRole(userU, bizB3, entity.RoleClient)

	out, err := newBusinessUC(s).ListMine(context.Background(), userU, dto.PageRequest{})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, []string{bizB1, bizB2}, ids(out.Items))
	assert.Equal(t, 20, out.Page.Limit)
}

func TestBusinessListMine_SuperAdminVeTodos(t *testing.T) {
	s := seedBusinesses()
	s.AddSuperAdmin(userV)
	s.SetCurrentPointer(userV, bizB3)

	out, err := newBusinessUC(s).ListMine(context.Background(), userV, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{bizB1, bizB2}, ids(out.Items))
	assert.Equal(t, bizB3, out.Current)
}

func TestBusinessListMine_Paginacion(t *testing.T) {
	s := seedBusinesses()
	s.AddUserRole(userV, bizB1, entity.RoleOwner)
	s.AddUserRole(userV, bizB3, entity.RoleManager)

	out, err := newBusinessUC(s).ListMine(context.Background(), userV, dto.PageRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{bizB3}, ids(out.Items))

	out, err = newBusinessUC(s).ListMine(context.Background(), userV, dto.PageRequest{Limit: 1, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestBusinessListMine_ErrorDeLectura(t *testing.T) {
	s := seedBusinesses()
	s.Failures["ListUserRoles"] = errors.New("db caída")

	_, err := newBusinessUC(s).ListMine(context.Background(), userU, dto.PageRequest{})
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// SetCurrent
// ──────────────────────────────────────────────────────────────────────────────

func TestBusinessSetCurrent(t *testing.T) {
	tests := []struct {
		name    string
		seed    func(s *memory.Store)
		user    string
		biz     string
		allowed bool
	}{
		{name: "rol de gestión", seed: func(s *memory.Store) { s.AddUserRole(userV, bizB1, entity.RoleManager) }, user: userV, biz: bizB1, allowed: true},
		{name: "dueño", seed: func(*memory.Store) {}, user: userU, biz: bizB2, allowed: true},
		{name: "super-admin", seed: func(s *memory.Store) { s.AddSuperAdmin(userV) }, user: userV, biz: bizB3, allowed: true},
		{name: "solo cliente", seed: func(s *memory.Store) { s.AddUserRole(userV, bizB1, entity.RoleClient) }, user: userV, biz: bizB1},
		{name: "rol en otro negocio", seed: func(s *memory.Store) { s.AddUserRole(userV, bizB2, entity.RoleAdmin) }, user: userV, biz: bizB1},
		{name: "negocio inexistente", seed: func(s *memory.Store) { s.AddSuperAdmin(userV) }, user: userV, biz: "b-9999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seedBusinesses()
			tt.seed(s)

			err := newBusinessUC(s).SetCurrent(context.Background(), tt.user, tt.biz)
			if !tt.allowed {
				assert.True(t, domain.IsContextCode(err, domain.CodeNoBizAccess), "err = %v", err)
				assert.Equal(t, 0, s.Calls("Current.Set"))
				return
			}
			require.NoError(t, err)
			sel, _ := s.Current().Get(context.Background(), tt.user)
			require.NotNil(t, sel)
			assert.Equal(t, tt.biz, sel.BizID)
		})
	}
}

func TestBusinessSetCurrent_ElResolverLoUsa(t *testing.T) {
	s := seedBusinesses()
	s.AddSession("tok", &entity.User{ID: userV})
	s.AddUserRole(userV, bizB1, entity.RoleManager)
	s.AddUserRole(userV, bizB3, entity.RoleAdmin)

	require.NoError(t, newBusinessUC(s).SetCurrent(context.Background(), userV, bizB3))

	r := bizctx.NewBizResolver(bizctx.BizResolverDeps{
		Sessions: s.Sessions(), Admins: s.Admins(), Businesses: s.Businesses(),
		Current: s.Current(), Roles: s.Roles(),
	})
	bc, err := r.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, bizB3, bc.BizID)

	resp := usecase.ContextResponse(bc)
	assert.True(t, resp.OK)
	assert.Equal(t, entity.RoleAdmin, resp.Role)
	assert.Equal(t, bizctx.SourceCurrentBusiness, resp.Source)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetBySlug
// ──────────────────────────────────────────────────────────────────────────────

func TestBusinessGetBySlug(t *testing.T) {
	s := seedBusinesses()
	uc := newBusinessUC(s)

	out, err := uc.GetBySlug(context.Background(), "Salón  Bella")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, bizB1, out.Business.ID)

	out, err = uc.GetBySlug(context.Background(), "no-existe")
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = uc.GetBySlug(context.Background(), "¡¿")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
