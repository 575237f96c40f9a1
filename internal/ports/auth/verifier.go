package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite tokens para un usuario autenticado (login).
type TokenIssuer interface {
	Issue(ctx context.Context, claims Claims) (Token, error)
}

// TokenService junta ambos lados; lo implementa jwtauth.Manager.
type TokenService interface {
	AuthVerifier
	TokenIssuer
}
