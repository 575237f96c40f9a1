package adoptions

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	Create(ctx context.Context, r Request) error
	Update(ctx context.Context, r Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	// List devuelve las solicitudes más nuevas primero.
	List(ctx context.Context, f ListFilter) ([]Request, error)
	Delete(ctx context.Context, id string) error
	// DeleteMatching borra el conjunto filtrado y devuelve cuántas filas borró.
	DeleteMatching(ctx context.Context, f ListFilter) (int, error)
}
