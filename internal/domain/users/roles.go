package users

// DeriveRole aplica la regla de persistencia de Account: una identidad staff o
// superuser siempre queda como admin, sin importar el rol pedido. Se evalúa en
// cada guardado, no solo al crear, para que un privilegio otorgado después
// converja en el siguiente guardado.
func DeriveRole(u User, requested Role) Role {
	if u.Privileged() {
		return RoleAdmin
	}
	return requested
}
