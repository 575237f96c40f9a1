package media

import (
	"bytes"
	"context"
	"errors"
	"io"

	mediaport "pet-adoption/internal/ports/media"

	"github.com/google/uuid"
)

const (
	DirProfileImages = "profile_images"
	DirPetImages     = "pet_images"
)

// Ingestor convierte payloads de imagen en referencias opacas guardadas en un Store.
// Los perfiles y mascotas solo conocen la referencia resultante.
type Ingestor struct {
	store mediaport.Store
	newID func() string
}

func NewIngestor(store mediaport.Store) *Ingestor {
	return &Ingestor{store: store, newID: uuid.NewString}
}

// FromDataURI decodifica un data URI y lo guarda como <uuid>.<ext>.
func (in *Ingestor) FromDataURI(ctx context.Context, dir, uri string) (string, error) {
	ext, data, err := ParseDataURI(uri)
	if err != nil {
		return "", err
	}
	return in.save(ctx, dir, ext, bytes.NewReader(data))
}

// FromUpload guarda un archivo recibido por multipart, usando la extensión del nombre original.
func (in *Ingestor) FromUpload(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	ext, err := ExtFromFilename(filename)
	if err != nil {
		return "", err
	}
	return in.save(ctx, dir, ext, r)
}

func (in *Ingestor) save(ctx context.Context, dir, ext string, r io.Reader) (string, error) {
	if in == nil || in.store == nil {
		return "", errors.New("media: store not configured")
	}
	return in.store.Save(ctx, dir, in.newID()+"."+ext, r)
}
