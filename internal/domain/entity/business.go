package entity

import "time"

// Business representa un tenant (salón, negocio de servicios). Un único dueño vía OwnerID;
// el resto del personal de gestión se asigna por UserRole.
type Business struct {
	ID        string
	Slug      string
	Name      string
	OwnerID   *string
	CreatedAt time.Time
}

// IsOwnedBy informa si userID es el dueño directo del negocio.
func (b *Business) IsOwnedBy(userID string) bool {
	return b != nil && b.OwnerID != nil && *b.OwnerID == userID
}

// CurrentBusinessSelection es el puntero "último negocio seleccionado" por usuario.
// No se confía en él sin revalidarlo contra los roles vigentes.
type CurrentBusinessSelection struct {
	UserID    string
	BizID     string
	UpdatedAt time.Time
}
