package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict lo devuelven los repos ante violaciones de unicidad (username).
	ErrConflict = errors.New("conflict")
)

type Repository interface {
	// CreateWithAccount inserta identidad + cuenta de forma atómica.
	CreateWithAccount(ctx context.Context, u User, a Account) error
	UpdateUser(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)

	GetAccount(ctx context.Context, userID string) (Account, error)
	// SaveAccount hace upsert por UserID.
	SaveAccount(ctx context.Context, a Account) error
}
