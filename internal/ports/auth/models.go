package auth

import "time"

// Claims representa la información extraída del token.
type Claims struct {
	UserID   string
	Username string
}

// Token es lo que devuelve un TokenIssuer al hacer login.
type Token struct {
	Value     string
	ExpiresAt time.Time
}
