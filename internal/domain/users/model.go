package users

import (
	"strings"
	"time"
)

// Role define el rol funcional de una cuenta.
// @Enum admin, adopter, poster, foster
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAdopter Role = "adopter"
	RolePoster  Role = "poster"
	RoleFoster  Role = "foster"
)

// DefaultRole se usa cuando el registro no indica rol.
const DefaultRole = RoleAdopter

var Roles = []Role{RoleAdmin, RoleAdopter, RolePoster, RoleFoster}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// User es la identidad (credenciales + flags de privilegio).
type User struct {
	ID string

	Username  string
	Email     string
	FirstName string

	PasswordHash string

	IsStaff     bool
	IsSuperuser bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Privileged indica si la identidad debe quedar como admin en su cuenta.
func (u User) Privileged() bool {
	return u.IsSuperuser || u.IsStaff
}

// Account guarda el rol; relación 1:1 con User.
type Account struct {
	UserID string
	Role   Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity es el resultado de buscar un usuario: Account es nil si todavía no existe.
type Identity struct {
	User    User
	Account *Account
}

// Role devuelve el rol efectivo (DefaultRole si no hay cuenta).
func (i Identity) Role() Role {
	if i.Account == nil {
		return DefaultRole
	}
	return i.Account.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role() == RoleAdmin
}
