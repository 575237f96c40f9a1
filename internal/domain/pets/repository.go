package pets

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	// List devuelve las mascotas más nuevas primero.
	List(ctx context.Context, f ListFilter) ([]Pet, error)
	Delete(ctx context.Context, id string) error
}
