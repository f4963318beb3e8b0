// Package bizctx resuelve en qué negocio (tenant) y con qué rol actúa el usuario de la sesión.
// Es lectura pura por petición: no hay caché entre peticiones.
package bizctx

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Agenda-api/internal/application/session"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// Pasos de resolución, en orden de prioridad.
const (
	SourceSuperAdminCurrent = "super_admin_current"
	SourceSuperAdminDefault = "super_admin_default"
	SourceSuperAdminAny     = "super_admin_any"
	SourceCurrentBusiness   = "current_business"
	SourceRoleScan          = "role_scan"
	SourceOwner             = "owner"
)

// ManagementRoleKeys roles que habilitan el contexto de gestión.
var ManagementRoleKeys = []string{entity.RoleOwner, entity.RoleAdmin, entity.RoleManager}

// BizContext resultado de la resolución.
type BizContext struct {
	UserID       string
	BizID        string
	Role         string // mejor rol de gestión en BizID ("" para super-admin sin rol propio)
	IsSuperAdmin bool
	Source       string
}

// BizResolverDeps dependencias del resolver.
type BizResolverDeps struct {
	Sessions       session.Accessor
	Admins         repository.AdminRepository
	Businesses     repository.BusinessRepository
	Current        repository.CurrentBusinessRepository
	Roles          repository.RoleRepository
	DefaultBizSlug string
	Log            *logger.Logger
}

// BizResolver implementa la cadena super-admin → puntero actual → roles → dueño.
type BizResolver struct {
	deps  BizResolverDeps
	steps []step
}

// NewBizResolver construye el resolver con la cadena de pasos fija.
func NewBizResolver(deps BizResolverDeps) *BizResolver {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	r := &BizResolver{deps: deps}
	r.steps = []step{
		{name: SourceSuperAdminCurrent, applies: isSuperAdmin, resolve: r.superAdminCurrent},
		{name: SourceSuperAdminDefault, applies: isSuperAdmin, resolve: r.superAdminDefault},
		{name: SourceSuperAdminAny, applies: isSuperAdmin, resolve: r.superAdminAny},
		{name: SourceCurrentBusiness, applies: hasPointer, resolve: r.currentBusiness},
		{name: SourceRoleScan, applies: notSuperAdmin, resolve: r.roleScan},
		{name: SourceOwner, applies: notSuperAdmin, resolve: r.ownerFallback},
	}
	return r
}

// step es un par (predicado, resolución). resolve devuelve "" si no resolvió.
type step struct {
	name    string
	applies func(st *resolveState) bool
	resolve func(ctx context.Context, st *resolveState) (string, error)
}

// resolveState acumula lo leído durante una resolución (vive solo en la petición).
type resolveState struct {
	user        *entity.User
	superAdmin  bool
	pointer     *entity.CurrentBusinessSelection
	roles       []entity.UserRole
	rolesLoaded bool
	owned       []*entity.Business
	ownedLoaded bool
	diag        map[string]any
}

func isSuperAdmin(st *resolveState) bool  { return st.superAdmin }
func notSuperAdmin(st *resolveState) bool { return !st.superAdmin }
func hasPointer(st *resolveState) bool    { return !st.superAdmin && st.pointer != nil }

// Resolve devuelve el contexto de negocio para el access token o un *domain.ContextError
// (NOT_AUTHENTICATED / NO_BIZ_ACCESS). Los fallos de infraestructura se devuelven envueltos.
func (r *BizResolver) Resolve(ctx context.Context, accessToken string) (*BizContext, error) {
	user, err := r.deps.Sessions.CurrentUser(ctx, accessToken)
	if err != nil {
		metrics.BizContextResolutions.WithLabelValues("none", "error").Inc()
		return nil, fmt.Errorf("bizctx: sesión: %w", err)
	}
	if user == nil {
		metrics.BizContextResolutions.WithLabelValues("none", "not_authenticated").Inc()
		return nil, domain.NewContextError(domain.CodeNotAuthenticated, "sesión requerida")
	}
	return r.ResolveForUser(ctx, user)
}

// ResolveForUser ejecuta la cadena para un usuario ya autenticado.
func (r *BizResolver) ResolveForUser(ctx context.Context, user *entity.User) (*BizContext, error) {
	st := &resolveState{user: user, diag: map[string]any{}}

	superAdmin, err := r.deps.Admins.IsSuperAdmin(ctx, user.ID)
	if err != nil {
		metrics.BizContextResolutions.WithLabelValues("none", "error").Inc()
		return nil, fmt.Errorf("bizctx: is_super_admin: %w", err)
	}
	st.superAdmin = superAdmin
	st.diag["super_admin"] = superAdmin

	pointer, err := r.deps.Current.Get(ctx, user.ID)
	if err != nil {
		metrics.BizContextResolutions.WithLabelValues("none", "error").Inc()
		return nil, fmt.Errorf("bizctx: negocio actual: %w", err)
	}
	if pointer != nil && pointer.BizID != "" {
		st.pointer = pointer
	}
	st.diag["current_pointer"] = st.pointer != nil

	for _, s := range r.steps {
		if !s.applies(st) {
			continue
		}
		bizID, err := s.resolve(ctx, st)
		if err != nil {
			metrics.BizContextResolutions.WithLabelValues(s.name, "error").Inc()
			return nil, fmt.Errorf("bizctx: %s: %w", s.name, err)
		}
		if bizID == "" {
			continue
		}
		// el rol efectivo combina filas de user_roles y propiedad directa del negocio
		if !st.superAdmin {
			if err := r.loadOwned(ctx, st); err != nil {
				metrics.BizContextResolutions.WithLabelValues(s.name, "error").Inc()
				return nil, fmt.Errorf("bizctx: %s: dueño: %w", s.name, err)
			}
		}
		metrics.BizContextResolutions.WithLabelValues(s.name, "ok").Inc()
		return &BizContext{
			UserID:       user.ID,
			BizID:        bizID,
			Role:         st.roleAt(bizID),
			IsSuperAdmin: st.superAdmin,
			Source:       s.name,
		}, nil
	}

	metrics.BizContextResolutions.WithLabelValues("none", "no_biz_access").Inc()
	r.deps.Log.Info().
		Str("user_id", user.ID).
		Fields(st.diag).
		Msg("sin negocio resoluble para el usuario")
	return nil, &domain.ContextError{
		Code:        domain.CodeNoBizAccess,
		Message:     "el usuario no tiene acceso a ningún negocio",
		Diagnostics: st.diag,
	}
}

func (r *BizResolver) superAdminCurrent(ctx context.Context, st *resolveState) (string, error) {
	if st.pointer == nil {
		return "", nil
	}
	biz, err := r.deps.Businesses.GetByID(ctx, st.pointer.BizID)
	if err != nil {
		return "", err
	}
	st.diag["current_pointer_valid"] = biz != nil
	if biz == nil {
		return "", nil
	}
	return biz.ID, nil
}

func (r *BizResolver) superAdminDefault(ctx context.Context, _ *resolveState) (string, error) {
	if r.deps.DefaultBizSlug == "" {
		return "", nil
	}
	biz, err := r.deps.Businesses.GetBySlug(ctx, r.deps.DefaultBizSlug)
	if err != nil || biz == nil {
		return "", err
	}
	return biz.ID, nil
}

func (r *BizResolver) superAdminAny(ctx context.Context, _ *resolveState) (string, error) {
	biz, err := r.deps.Businesses.First(ctx)
	if err != nil || biz == nil {
		return "", err
	}
	return biz.ID, nil
}

// currentBusiness acepta el puntero solo si el usuario sigue teniendo un rol de gestión
// en ese negocio o es su dueño directo; si no, se ignora en silencio.
func (r *BizResolver) currentBusiness(ctx context.Context, st *resolveState) (string, error) {
	if err := r.loadRoles(ctx, st); err != nil {
		return "", err
	}
	bizID := st.pointer.BizID
	valid := false
	for _, role := range st.roles {
		if role.ScopedTo(bizID) && entity.IsManagementRole(role.RoleKey) {
			valid = true
			break
		}
	}
	if !valid {
		if err := r.loadOwned(ctx, st); err != nil {
			return "", err
		}
		for _, b := range st.owned {
			if b.ID == bizID {
				valid = true
				break
			}
		}
	}
	st.diag["current_pointer_valid"] = valid
	if !valid {
		return "", nil
	}
	return bizID, nil
}

// roleScan elige, entre los roles de gestión con negocio explícito, el id de negocio
// lexicográficamente menor. Determinista e independiente del orden de las filas.
func (r *BizResolver) roleScan(ctx context.Context, st *resolveState) (string, error) {
	if err := r.loadRoles(ctx, st); err != nil {
		return "", err
	}
	eligible, withBiz := 0, 0
	var candidates []string
	for _, role := range st.roles {
		if !entity.IsManagementRole(role.RoleKey) {
			continue
		}
		eligible++
		if role.HasBiz() {
			withBiz++
			candidates = append(candidates, *role.BizID)
		}
	}
	st.diag["eligible_roles"] = eligible
	st.diag["eligible_with_biz"] = withBiz
	if len(candidates) == 0 {
		return "", nil
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

func (r *BizResolver) ownerFallback(ctx context.Context, st *resolveState) (string, error) {
	if err := r.loadOwned(ctx, st); err != nil {
		return "", err
	}
	st.diag["owner_match"] = len(st.owned) > 0
	return smallestBizID(st.owned), nil
}

func (r *BizResolver) loadRoles(ctx context.Context, st *resolveState) error {
	if st.rolesLoaded {
		return nil
	}
	roles, err := r.deps.Roles.ListUserRoles(ctx, st.user.ID)
	if err != nil {
		return err
	}
	st.roles = roles
	st.rolesLoaded = true
	st.diag["roles_found"] = len(roles)
	return nil
}

func (r *BizResolver) loadOwned(ctx context.Context, st *resolveState) error {
	if st.ownedLoaded {
		return nil
	}
	owned, err := r.deps.Businesses.ListOwnedBy(ctx, st.user.ID)
	if err != nil {
		return err
	}
	st.owned = owned
	st.ownedLoaded = true
	return nil
}

// roleAt devuelve el mejor rol de gestión del usuario en bizID. Ser dueño directo siempre
// da owner, aunque exista además una fila de rol menor. Requiere roles y owned cargados.
func (st *resolveState) roleAt(bizID string) string {
	best := ""
	for _, role := range st.roles {
		if role.ScopedTo(bizID) && entity.IsManagementRole(role.RoleKey) {
			best = entity.HigherRole(best, role.RoleKey)
		}
	}
	for _, b := range st.owned {
		if b.ID == bizID {
			best = entity.RoleOwner
		}
	}
	return best
}

func smallestBizID(list []*entity.Business) string {
	id := ""
	for _, b := range list {
		if b == nil {
			continue
		}
		if id == "" || b.ID < id {
			id = b.ID
		}
	}
	return id
}
