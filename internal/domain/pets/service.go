package pets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"pet-adoption/internal/media"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/patch"
	"pet-adoption/internal/platform/sanitize"
	"pet-adoption/internal/platform/validation"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const msgBadImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// ImageIngestor guarda la imagen recibida y devuelve la referencia.
type ImageIngestor interface {
	FromDataURI(ctx context.Context, dir, uri string) (string, error)
	FromUpload(ctx context.Context, dir, filename string, r io.Reader) (string, error)
}

// RequestPurger borra las solicitudes de adopción de una mascota.
// Lo implementa adoptions.Service; se conecta después de construir ambos.
type RequestPurger interface {
	DeleteByPet(ctx context.Context, petID string) (int, error)
}

// ImageUpload es una imagen recibida como data URI o como archivo multipart.
type ImageUpload struct {
	DataURI  string
	Filename string
	Body     io.Reader
}

type Service struct {
	repo     Repository
	images   ImageIngestor
	requests RequestPurger
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, images ImageIngestor, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		images: images,
		log:    log,
		now:    time.Now,
	}
}

func (s *Service) SetRequestPurger(p RequestPurger) {
	s.requests = p
}

// Input sirve para create (todo presente) y para update (PUT/PATCH).
type Input struct {
	Name   patch.Field[string]
	Breed  patch.Field[string]
	Age    patch.Field[int]
	Type   patch.Field[string]
	Status patch.Field[string]
	Sex    patch.Field[string]
	Weight patch.Field[float64]
	Image  patch.Field[ImageUpload]
}

func (s *Service) Create(ctx context.Context, in Input) (Pet, error) {
	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		Status:    StatusAvailable,
		Sex:       SexUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.apply(ctx, &p, in, false); err != nil {
		return Pet{}, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	s.log.Info("pet created", map[string]any{"pet_id": p.ID, "type": string(p.Type)})
	return p, nil
}

// Update aplica un PUT (partial=false, exige los campos obligatorios) o un PATCH.
func (s *Service) Update(ctx context.Context, id string, in Input, partial bool) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if err := s.apply(ctx, &p, in, partial); err != nil {
		return Pet{}, err
	}
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Pet, error) {
	return s.repo.List(ctx, f)
}

// Delete borra la mascota y después sus solicitudes de adopción. Si el borrado
// de la mascota falla las solicitudes quedan intactas. En SQL la FK ya borra en
// cascada y no hay purger conectado.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	if s.requests == nil {
		return nil
	}
	n, err := s.requests.DeleteByPet(ctx, p.ID)
	if err != nil {
		s.log.Error("adoption requests purge failed", map[string]any{"pet_id": p.ID, "err": err})
		return nil
	}
	if n > 0 {
		s.log.Info("adoption requests purged", map[string]any{"pet_id": p.ID, "count": n})
	}
	return nil
}

// apply valida todo el input y recién después modifica p.
func (s *Service) apply(ctx context.Context, p *Pet, in Input, partial bool) error {
	v := validation.Violations{}

	name := requiredText("name", in.Name, maxName, partial, v)
	breed := requiredText("breed", in.Breed, maxBreed, partial, v)

	if !in.Age.Present && !partial {
		v.Add("age", "required")
	} else if in.Age.Present {
		switch {
		case in.Age.Null:
			v.Add("age", "may not be null")
		case in.Age.Value < 0:
			v.Add("age", "Ensure this value is greater than or equal to 0.")
		}
	}

	var typ Type
	if !in.Type.Present && !partial {
		v.Add("type", "required")
	} else if in.Type.Present {
		t, ok := ParseType(in.Type.Value)
		if in.Type.Null || !ok {
			v.Add("type", "invalid choice")
		}
		typ = t
	}

	var status Status
	if in.Status.HasValue() {
		st, ok := ParseStatus(in.Status.Value)
		if !ok {
			v.Add("status", "invalid choice")
		}
		status = st
	} else if in.Status.Null {
		v.Add("status", "may not be null")
	}

	var sex Sex
	if in.Sex.HasValue() {
		sx, ok := ParseSex(in.Sex.Value)
		if !ok {
			v.Add("sex", "invalid choice")
		}
		sex = sx
	} else if in.Sex.Null {
		v.Add("sex", "may not be null")
	}

	if in.Weight.HasValue() && (math.IsNaN(in.Weight.Value) || math.IsInf(in.Weight.Value, 0) || in.Weight.Value < 0) {
		v.Add("weight", "invalid number")
	}
	if in.Image.HasValue() && in.Image.Value.DataURI != "" {
		if _, _, err := media.ParseDataURI(in.Image.Value.DataURI); err != nil {
			v.Add("image", msgBadImage)
		}
	}
	if in.Image.HasValue() && in.Image.Value.Body != nil {
		if _, err := media.ExtFromFilename(in.Image.Value.Filename); err != nil {
			v.Add("image", msgBadImage)
		}
	}

	if err := v.Err(); err != nil {
		return err
	}

	image, err := s.resolveImage(ctx, in.Image, p.Image)
	if err != nil {
		return err
	}

	if in.Name.HasValue() {
		p.Name = name
	}
	if in.Breed.HasValue() {
		p.Breed = breed
	}
	if in.Age.HasValue() {
		p.Age = in.Age.Value
	}
	if in.Type.HasValue() {
		p.Type = typ
	}
	if in.Status.HasValue() {
		p.Status = status
	}
	if in.Sex.HasValue() {
		p.Sex = sex
	}
	if in.Weight.Present {
		p.Weight = in.Weight.Ptr()
	}
	p.Image = image
	return nil
}

func (s *Service) resolveImage(ctx context.Context, in patch.Field[ImageUpload], current string) (string, error) {
	if !in.Present {
		return current, nil
	}
	if in.Null {
		return "", nil
	}
	if s.images == nil {
		return "", errors.New("pets: image store not configured")
	}

	var (
		ref string
		err error
	)
	switch {
	case in.Value.Body != nil:
		ref, err = s.images.FromUpload(ctx, media.DirPetImages, in.Value.Filename, in.Value.Body)
	case in.Value.DataURI != "":
		ref, err = s.images.FromDataURI(ctx, media.DirPetImages, in.Value.DataURI)
	default:
		return "", nil
	}
	if err != nil {
		if errors.Is(err, media.ErrInvalidDataURI) || errors.Is(err, media.ErrUnsupportedImage) {
			return "", validation.Violations{"image": {msgBadImage}}.Err()
		}
		return "", fmt.Errorf("store pet image: %w", err)
	}
	return ref, nil
}

func requiredText(field string, in patch.Field[string], max int, partial bool, v validation.Violations) string {
	if !in.Present {
		if !partial {
			v.Add(field, "required")
		}
		return ""
	}
	if in.Null {
		v.Add(field, "may not be null")
		return ""
	}
	val := sanitize.Text(in.Value)
	validation.Required(field, val, v)
	validation.MaxLen(field, val, max, v)
	return val
}
