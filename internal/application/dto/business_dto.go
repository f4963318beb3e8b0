package dto

import "time"

// BizContextResponse negocio resuelto para el usuario de la sesión.
type BizContextResponse struct {
	Envelope
	UserID       string `json:"user_id"`
	BizID        string `json:"biz_id"`
	Role         string `json:"role,omitempty"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	Source       string `json:"source"`
}

// BusinessResponse salida de un negocio.
type BusinessResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	OwnerID   *string   `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BusinessDetailResponse un negocio dentro del sobre.
type BusinessDetailResponse struct {
	Envelope
	Business BusinessResponse `json:"business"`
}

// BusinessListResponse negocios que el usuario puede gestionar.
type BusinessListResponse struct {
	Envelope
	Items   []BusinessResponse `json:"items"`
	Current string             `json:"current_biz_id,omitempty"`
	Page    PageResponse       `json:"page"`
}

// SetCurrentBusinessRequest entrada de PUT /api/me/current-business.
type SetCurrentBusinessRequest struct {
	BizID string `json:"biz_id" validate:"required,uuid"`
}
