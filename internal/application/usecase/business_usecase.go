package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Agenda-api/internal/application/bizctx"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/pkg/slug"
)

// BusinessUseCase negocios visibles para el usuario y selección del negocio actual.
type BusinessUseCase struct {
	businesses repository.BusinessRepository
	current    repository.CurrentBusinessRepository
	roles      repository.RoleRepository
	admins     repository.AdminRepository
}

// NewBusinessUseCase construye el caso de uso con los puertos de persistencia.
func NewBusinessUseCase(
	businesses repository.BusinessRepository,
	current repository.CurrentBusinessRepository,
	roles repository.RoleRepository,
	admins repository.AdminRepository,
) *BusinessUseCase {
	return &BusinessUseCase{businesses: businesses, current: current, roles: roles, admins: admins}
}

// ContextResponse convierte el contexto resuelto en la respuesta de GET /api/me/context.
func ContextResponse(bc *bizctx.BizContext) dto.BizContextResponse {
	return dto.BizContextResponse{
		Envelope:     dto.Success(),
		UserID:       bc.UserID,
		BizID:        bc.BizID,
		Role:         bc.Role,
		IsSuperAdmin: bc.IsSuperAdmin,
		Source:       bc.Source,
	}
}

// ListMine lista los negocios que el usuario puede gestionar: todos si es super-admin,
// si no la unión de sus roles owner/admin/manager y los negocios de los que es dueño.
func (uc *BusinessUseCase) ListMine(ctx context.Context, userID string, page dto.PageRequest) (*dto.BusinessListResponse, error) {
	page.DefaultPage()

	superAdmin, err := uc.admins.IsSuperAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("is_super_admin: %w", err)
	}

	var list []*entity.Business
	if superAdmin {
		list, err = uc.businesses.List(ctx, page.Limit, page.Offset)
		if err != nil {
			return nil, err
		}
	} else {
		list, err = uc.manageable(ctx, userID)
		if err != nil {
			return nil, err
		}
		list = paginate(list, page.Limit, page.Offset)
	}

	out := &dto.BusinessListResponse{
		Envelope: dto.Success(),
		Items:    make([]dto.BusinessResponse, 0, len(list)),
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, b := range list {
		out.Items = append(out.Items, businessToResponse(b))
	}

	pointer, err := uc.current.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pointer != nil {
		out.Current = pointer.BizID
	}
	return out, nil
}

func (uc *BusinessUseCase) manageable(ctx context.Context, userID string) ([]*entity.Business, error) {
	roles, err := uc.roles.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var ids []string
	for _, r := range roles {
		if r.HasBiz() && entity.IsManagementRole(r.RoleKey) && !seen[*r.BizID] {
			seen[*r.BizID] = true
			ids = append(ids, *r.BizID)
		}
	}

	var list []*entity.Business
	if len(ids) > 0 {
		list, err = uc.businesses.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	owned, err := uc.businesses.ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, b := range owned {
		if !seen[b.ID] {
			seen[b.ID] = true
			list = append(list, b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// SetCurrent guarda el puntero de negocio actual. Solo se permite si el negocio existe y el
// usuario es super-admin, tiene un rol de gestión en él o es su dueño; si no, NO_BIZ_ACCESS.
func (uc *BusinessUseCase) SetCurrent(ctx context.Context, userID, bizID string) error {
	biz, err := uc.businesses.GetByID(ctx, bizID)
	if err != nil {
		return err
	}
	if biz == nil {
		return domain.NewContextError(domain.CodeNoBizAccess, "negocio no disponible")
	}

	allowed := biz.IsOwnedBy(userID)
	if !allowed {
		allowed, err = uc.admins.IsSuperAdmin(ctx, userID)
		if err != nil {
			return fmt.Errorf("is_super_admin: %w", err)
		}
	}
	if !allowed {
		allowed, err = uc.roles.HasRoleIn(ctx, userID, bizID, bizctx.ManagementRoleKeys)
		if err != nil {
			return err
		}
	}
	if !allowed {
		return domain.NewContextError(domain.CodeNoBizAccess, "sin acceso a ese negocio")
	}
	return uc.current.Set(ctx, userID, bizID)
}

// GetBySlug busca un negocio por slug público (se normaliza antes de buscar).
// Devuelve (nil, nil) si no existe.
func (uc *BusinessUseCase) GetBySlug(ctx context.Context, raw string) (*dto.BusinessDetailResponse, error) {
	s := slug.Normalize(raw)
	if s == "" {
		return nil, domain.ErrInvalidInput
	}
	biz, err := uc.businesses.GetBySlug(ctx, s)
	if err != nil {
		return nil, err
	}
	if biz == nil {
		return nil, nil
	}
	return &dto.BusinessDetailResponse{Envelope: dto.Success(), Business: businessToResponse(biz)}, nil
}

func businessToResponse(b *entity.Business) dto.BusinessResponse {
	return dto.BusinessResponse{
		ID:        b.ID,
		Slug:      b.Slug,
		Name:      b.Name,
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt,
	}
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
