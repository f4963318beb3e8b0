package entity

// User es la identidad autenticada que devuelve el proveedor externo de auth.
// Su ciclo de vida (alta, verificación, borrado) pertenece al proveedor; aquí solo se lee.
type User struct {
	ID       string
	Email    string
	Phone    string
	Metadata map[string]any
}
