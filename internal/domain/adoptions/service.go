package adoptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/patch"
	"pet-adoption/internal/platform/sanitize"
	"pet-adoption/internal/platform/validation"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

// PetDirectory resuelve el nombre de la mascota; lo implementa pets.Service.
type PetDirectory interface {
	PetName(ctx context.Context, petID string) (string, error)
}

// View es una solicitud con el nombre de su mascota (solo lectura).
type View struct {
	Request
	PetName string
}

type Service struct {
	repo Repository
	pets PetDirectory
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, dir PetDirectory, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		pets: dir,
		log:  log,
		now:  time.Now,
	}
}

type Input struct {
	PetID         patch.Field[string]
	RequesterName patch.Field[string]
	Email         patch.Field[string]
	Status        patch.Field[string]
}

// Create registra una solicitud. El status siempre arranca en Pending.
func (s *Service) Create(ctx context.Context, in Input) (View, error) {
	v := validation.Violations{}
	petName := s.validatePet(ctx, in.PetID, false, v)
	name := validateRequester(in.RequesterName, false, v)
	email := validateEmail(in.Email, v)
	if err := v.Err(); err != nil {
		return View{}, err
	}

	now := s.now()
	r := Request{
		ID:            uuid.NewString(),
		PetID:         strings.TrimSpace(in.PetID.Value),
		RequesterName: name,
		Email:         email,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return View{}, err
	}
	s.log.Info("adoption request created", map[string]any{"request_id": r.ID, "pet_id": r.PetID})
	return View{Request: r, PetName: petName}, nil
}

// Update aplica PUT (partial=false: pet y requester_name obligatorios) o PATCH.
// Cambiar el status no modifica la mascota.
func (s *Service) Update(ctx context.Context, id string, in Input, partial bool) (View, error) {
	r, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return View{}, err
	}

	v := validation.Violations{}
	petName := s.validatePet(ctx, in.PetID, partial, v)
	name := validateRequester(in.RequesterName, partial, v)
	email := validateEmail(in.Email, v)
	var status Status
	if in.Status.Present {
		st, ok := ParseStatus(in.Status.Value)
		if in.Status.Null || !ok {
			v.Add("status", "invalid choice")
		}
		status = st
	}
	if err := v.Err(); err != nil {
		return View{}, err
	}

	if in.PetID.HasValue() {
		r.PetID = strings.TrimSpace(in.PetID.Value)
	}
	if in.RequesterName.HasValue() {
		r.RequesterName = name
	}
	if in.Email.Present {
		r.Email = email
	}
	if in.Status.HasValue() {
		r.Status = status
	}
	r.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, r); err != nil {
		return View{}, err
	}
	if petName == "" {
		petName = s.petName(ctx, r.PetID)
	}
	return View{Request: r, PetName: petName}, nil
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	r, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return View{}, err
	}
	return View{Request: r, PetName: s.petName(ctx, r.PetID)}, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]View, error) {
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	out := make([]View, 0, len(items))
	for _, r := range items {
		name, ok := names[r.PetID]
		if !ok {
			name = s.petName(ctx, r.PetID)
			names[r.PetID] = name
		}
		out = append(out, View{Request: r, PetName: name})
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

// DeleteMatching es el borrado masivo de la colección (DELETE sin id).
func (s *Service) DeleteMatching(ctx context.Context, f ListFilter) (int, error) {
	n, err := s.repo.DeleteMatching(ctx, f)
	if err != nil {
		return 0, err
	}
	s.log.Info("adoption requests bulk deleted", map[string]any{
		"count":          n,
		"requester_name": f.RequesterName,
		"email":          f.Email,
	})
	return n, nil
}

// DeleteByPet implementa pets.RequestPurger.
func (s *Service) DeleteByPet(ctx context.Context, petID string) (int, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.DeleteMatching(ctx, ListFilter{PetID: petID})
}

func (s *Service) validatePet(ctx context.Context, in patch.Field[string], partial bool, v validation.Violations) string {
	if !in.Present {
		if !partial {
			v.Add("pet", "required")
		}
		return ""
	}
	id := strings.TrimSpace(in.Value)
	if in.Null || id == "" {
		v.Add("pet", "may not be null")
		return ""
	}
	if s.pets == nil {
		return ""
	}
	name, err := s.pets.PetName(ctx, id)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			v.Add("pet", "Invalid pk \""+id+"\" - object does not exist.")
			return ""
		}
		v.Add("pet", "could not be verified")
		s.log.Error("pet lookup failed", map[string]any{"pet_id": id, "err": err})
		return ""
	}
	return name
}

func (s *Service) petName(ctx context.Context, petID string) string {
	if s.pets == nil || petID == "" {
		return ""
	}
	name, err := s.pets.PetName(ctx, petID)
	if err != nil {
		return ""
	}
	return name
}

func validateRequester(in patch.Field[string], partial bool, v validation.Violations) string {
	if !in.Present {
		if !partial {
			v.Add("requester_name", "required")
		}
		return ""
	}
	if in.Null {
		v.Add("requester_name", "may not be null")
		return ""
	}
	name := sanitize.Text(in.Value)
	validation.Required("requester_name", name, v)
	validation.MaxLen("requester_name", name, maxRequesterName, v)
	return name
}

func validateEmail(in patch.Field[string], v validation.Violations) string {
	if !in.HasValue() {
		return ""
	}
	email := strings.TrimSpace(in.Value)
	validation.Email("email", email, v)
	validation.MaxLen("email", email, maxEmail, v)
	return email
}
