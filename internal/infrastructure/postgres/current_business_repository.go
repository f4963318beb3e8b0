package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

var _ repository.CurrentBusinessRepository = (*CurrentBusinessRepo)(nil)

// CurrentBusinessRepo persiste el puntero user_current_business.
type CurrentBusinessRepo struct {
	db DBTX
}

// NewCurrentBusinessRepository construye el adaptador.
func NewCurrentBusinessRepository(db DBTX) *CurrentBusinessRepo {
	return &CurrentBusinessRepo{db: db}
}

// Get devuelve el puntero del usuario o nil si no tiene.
func (r *CurrentBusinessRepo) Get(ctx context.Context, userID string) (*entity.CurrentBusinessSelection, error) {
	if !isUUID(userID) {
		return nil, nil
	}
	const query = `
		SELECT user_id::text, biz_id::text, updated_at
		FROM user_current_business WHERE user_id = $1::uuid`
	var s entity.CurrentBusinessSelection
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.BizID, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get current business: %w", err)
	}
	return &s, nil
}

// Set hace upsert del puntero. Devuelve domain.ErrNotFound si bizID no existe (FK) o no es uuid.
func (r *CurrentBusinessRepo) Set(ctx context.Context, userID, bizID string) error {
	const query = `
		INSERT INTO user_current_business (user_id, biz_id, updated_at)
		VALUES ($1::uuid, $2::uuid, now())
		ON CONFLICT (user_id) DO UPDATE SET biz_id = EXCLUDED.biz_id, updated_at = now()`
	if _, err := r.db.Exec(ctx, query, userID, bizID); err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("set current business: %w", err)
	}
	return nil
}
