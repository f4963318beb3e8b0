package repository

import (
	"context"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// BusinessRepository define el puerto de lectura de negocios (tenants).
// Las lecturas inexistentes devuelven (nil, nil).
type BusinessRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Business, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Business, error)
	// First devuelve el negocio de menor id del sistema (nil si no hay ninguno).
	First(ctx context.Context) (*entity.Business, error)
	// ListOwnedBy devuelve los negocios con owner_id = userID ordenados por id ascendente.
	ListOwnedBy(ctx context.Context, userID string) ([]*entity.Business, error)
	// ListByIDs devuelve los negocios existentes de ids, ordenados por id.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Business, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Business, error)
}

// CurrentBusinessRepository define el puerto del puntero "negocio actual" por usuario.
type CurrentBusinessRepository interface {
	Get(ctx context.Context, userID string) (*entity.CurrentBusinessSelection, error)
	Set(ctx context.Context, userID, bizID string) error
}
