package media

import (
	"context"
	"io"
)

// Store persiste blobs de imagen. dir es una "carpeta" lógica
// (profile_images, pet_images) y name el nombre final del archivo.
// Devuelve la referencia pública (URL o path) que guardan las entidades.
type Store interface {
	Save(ctx context.Context, dir, name string, r io.Reader) (string, error)
}
