package dto

import "time"

// StaffListRequest filtros de GET /api/staff.
type StaffListRequest struct {
	BranchID string `query:"branch_id" validate:"omitempty,uuid"`
	Active   *bool  `query:"active"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
}

// StaffResponse salida de un empleado.
type StaffResponse struct {
	ID        string    `json:"id"`
	BizID     string    `json:"biz_id"`
	BranchID  string    `json:"branch_id"`
	UserID    *string   `json:"user_id,omitempty"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// StaffListResponse empleados del negocio.
type StaffListResponse struct {
	Envelope
	Items []StaffResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// StaffContextResponse identidad de empleado del usuario de la sesión.
type StaffContextResponse struct {
	Envelope
	UserID   string `json:"user_id"`
	StaffID  string `json:"staff_id"`
	BizID    string `json:"biz_id"`
	BranchID string `json:"branch_id"`
}

// InitScheduleResponse resultado de init_staff_schedule.
type InitScheduleResponse struct {
	Envelope
	StaffID string `json:"staff_id"`
	Created int    `json:"created"`
}
