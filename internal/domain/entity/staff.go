package entity

import "time"

// Staff relación laboral entre un usuario y un negocio/sucursal.
// Es independiente de UserRole: un empleado puede existir sin cuenta (UserID nil).
type Staff struct {
	ID        string
	BizID     string
	BranchID  string
	UserID    *string
	FullName  string
	IsActive  bool
	CreatedAt time.Time
}
