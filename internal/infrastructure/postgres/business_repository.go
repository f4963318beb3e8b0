package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

// Asegura que BusinessRepo implementa repository.BusinessRepository.
var _ repository.BusinessRepository = (*BusinessRepo)(nil)

const businessColumns = `id::text, slug, name, owner_id::text, created_at`

// BusinessRepo implementación del puerto BusinessRepository sobre PostgreSQL.
type BusinessRepo struct {
	db DBTX
}

// NewBusinessRepository construye el adaptador de persistencia para negocios.
func NewBusinessRepository(db DBTX) *BusinessRepo {
	return &BusinessRepo{db: db}
}

// GetByID obtiene un negocio por ID. Un id que no es uuid se trata como inexistente.
func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1::uuid`
	b, err := scanBusiness(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

// GetBySlug obtiene un negocio por slug.
func (r *BusinessRepo) GetBySlug(ctx context.Context, slug string) (*entity.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE slug = $1`
	b, err := scanBusiness(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business by slug: %w", err)
	}
	return b, nil
}

// First devuelve el negocio con el menor id (orden de texto, igual que el desempate de roles).
func (r *BusinessRepo) First(ctx context.Context) (*entity.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses ORDER BY id::text LIMIT 1`
	b, err := scanBusiness(r.db.QueryRow(ctx, query))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("first business: %w", err)
	}
	return b, nil
}

// ListOwnedBy devuelve los negocios cuyo owner_id es userID.
func (r *BusinessRepo) ListOwnedBy(ctx context.Context, userID string) ([]*entity.Business, error) {
	if !isUUID(userID) {
		return nil, nil
	}
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE owner_id = $1::uuid ORDER BY id::text`
	return r.list(ctx, "list owned businesses", query, userID)
}

// ListByIDs devuelve los negocios existentes entre ids.
func (r *BusinessRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Business, error) {
	ids = onlyUUIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = ANY($1::uuid[]) ORDER BY id::text`
	return r.list(ctx, "list businesses by ids", query, ids)
}

// List devuelve negocios con paginación.
func (r *BusinessRepo) List(ctx context.Context, limit, offset int) ([]*entity.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses ORDER BY id::text LIMIT $1 OFFSET $2`
	return r.list(ctx, "list businesses", query, limit, offset)
}

func (r *BusinessRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Business, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []*entity.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanBusiness(row pgx.Row) (*entity.Business, error) {
	var b entity.Business
	if err := row.Scan(&b.ID, &b.Slug, &b.Name, &b.OwnerID, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
