package entity

// Claves de rol (tabla roles.key).
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleClient  = "client"
)

// managementRoles son los roles que habilitan el panel de gestión de un negocio.
var managementRoles = map[string]struct{}{
	RoleOwner:   {},
	RoleAdmin:   {},
	RoleManager: {},
}

// roleRank ordena roles de gestión por privilegio (mayor = más privilegios).
var roleRank = map[string]int{
	RoleManager: 1,
	RoleAdmin:   2,
	RoleOwner:   3,
}

// IsManagementRole informa si key es owner, admin o manager.
func IsManagementRole(key string) bool {
	_, ok := managementRoles[key]
	return ok
}

// HigherRole devuelve el rol de gestión con más privilegios de los dos ("" cuenta como ninguno).
func HigherRole(a, b string) string {
	if roleRank[b] > roleRank[a] {
		return b
	}
	return a
}

// Role fila de la tabla de roles.
type Role struct {
	ID  string
	Key string
}

// UserRole asignación (usuario, negocio, rol). BizID nil = rol sin negocio explícito.
// RoleKey viene resuelto por join con roles.
type UserRole struct {
	UserID  string
	BizID   *string
	RoleID  string
	RoleKey string
}

// HasBiz informa si la fila lleva un negocio explícito.
func (r UserRole) HasBiz() bool {
	return r.BizID != nil && *r.BizID != ""
}

// ScopedTo informa si la fila pertenece al negocio bizID.
func (r UserRole) ScopedTo(bizID string) bool {
	return r.HasBiz() && *r.BizID == bizID
}
