package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/media"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/patch"
	"pet-adoption/internal/platform/sanitize"
	"pet-adoption/internal/platform/validation"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

const (
	msgRequired = "This field is required."
	msgNotNull  = "This field may not be null."
	msgBadImage = "Upload a valid image. Send a data:image/<ext>;base64 payload or null."
)

// Identities es lo que profiles necesita de users: leer y editar username/email.
type Identities interface {
	Lookup(ctx context.Context, userID string) (users.Identity, error)
	ValidateContact(ctx context.Context, userID string, username, email *string) validation.Violations
	UpdateContact(ctx context.Context, userID string, username, email *string) (users.User, error)
}

// ImageIngestor guarda una imagen en data URI y devuelve su referencia.
type ImageIngestor interface {
	FromDataURI(ctx context.Context, dir, uri string) (string, error)
}

type Service struct {
	repo       Repository
	identities Identities
	images     ImageIngestor
	log        logger.Logger
	now        func() time.Time
}

func NewService(repo Repository, identities Identities, images ImageIngestor, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:       repo,
		identities: identities,
		images:     images,
		log:        log,
		now:        time.Now,
	}
}

// UserProfileView junta el perfil con el contacto de la identidad dueña.
type UserProfileView struct {
	Profile  UserProfile
	Username string
	Email    string
}

type FosterProfileView struct {
	Profile  FosterProfile
	Username string
	Email    string
}

// EnsureUserProfile implementa users.ProfileProvisioner.
func (s *Service) EnsureUserProfile(ctx context.Context, userID string) error {
	_, err := s.GetOrCreateUserProfile(ctx, userID)
	return err
}

// GetOrCreateUserProfile: select -> insert -> ante conflicto, re-select.
// Dos primeros accesos concurrentes terminan viendo el mismo registro.
func (s *Service) GetOrCreateUserProfile(ctx context.Context, userID string) (UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserProfile{}, ErrInvalidInput
	}

	p, err := s.repo.GetUserProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return UserProfile{}, err
	}

	p = newUserProfile(uuid.NewString(), userID, s.now())
	if err := s.repo.CreateUserProfile(ctx, p); err != nil {
		if errors.Is(err, ErrConflict) {
			return s.repo.GetUserProfile(ctx, userID)
		}
		return UserProfile{}, err
	}
	s.log.Debug("user profile created", map[string]any{"user_id": userID, "profile_id": p.ID})
	return p, nil
}

func (s *Service) GetOrCreateFosterProfile(ctx context.Context, userID string) (FosterProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return FosterProfile{}, ErrInvalidInput
	}

	p, err := s.repo.GetFosterProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return FosterProfile{}, err
	}

	p = newFosterProfile(uuid.NewString(), userID, s.now())
	if err := s.repo.CreateFosterProfile(ctx, p); err != nil {
		if errors.Is(err, ErrConflict) {
			return s.repo.GetFosterProfile(ctx, userID)
		}
		return FosterProfile{}, err
	}
	s.log.Debug("foster profile created", map[string]any{"user_id": userID, "profile_id": p.ID})
	return p, nil
}

// UserProfileFor devuelve (creando si hace falta) el perfil del usuario autenticado.
func (s *Service) UserProfileFor(ctx context.Context, userID string) (UserProfileView, error) {
	p, err := s.GetOrCreateUserProfile(ctx, userID)
	if err != nil {
		return UserProfileView{}, err
	}
	return s.userView(ctx, p)
}

func (s *Service) FosterProfileFor(ctx context.Context, userID string) (FosterProfileView, error) {
	p, err := s.GetOrCreateFosterProfile(ctx, userID)
	if err != nil {
		return FosterProfileView{}, err
	}
	return s.fosterView(ctx, p)
}

// UserProfilePatch: cada campo puede venir ausente, null o con valor.
type UserProfilePatch struct {
	UserName     patch.Field[string]
	Email        patch.Field[string]
	Phone        patch.Field[string]
	Address      patch.Field[string]
	Household    patch.Field[string]
	ProfileImage patch.Field[string]
	Favorites    patch.Field[[]json.RawMessage]
	Preferences  patch.Field[[]string]
}

// UpdateUserProfile siempre hace merge (PUT y PATCH): ausente = sin cambio,
// lista vacía = limpiar. Se valida todo antes de escribir nada.
func (s *Service) UpdateUserProfile(ctx context.Context, userID string, in UserProfilePatch) (UserProfileView, error) {
	p, err := s.GetOrCreateUserProfile(ctx, userID)
	if err != nil {
		return UserProfileView{}, err
	}
	return s.updateUserProfile(ctx, p, in)
}

// RequireAdmin devuelve ErrForbidden si el usuario no tiene rol admin.
func (s *Service) RequireAdmin(ctx context.Context, userID string) error {
	if s.identities == nil {
		return ErrForbidden
	}
	id, err := s.identities.Lookup(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if !id.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// ListUserProfiles es la vista de administración sobre todos los perfiles.
func (s *Service) ListUserProfiles(ctx context.Context) ([]UserProfileView, error) {
	items, err := s.repo.ListUserProfiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserProfileView, 0, len(items))
	for _, p := range items {
		view, err := s.userView(ctx, p)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				// perfil huérfano: se muestra sin contacto
				out = append(out, UserProfileView{Profile: p})
				continue
			}
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) UserProfileByID(ctx context.Context, id string) (UserProfileView, error) {
	p, err := s.repo.GetUserProfileByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return UserProfileView{}, err
	}
	return s.userView(ctx, p)
}

// UpdateUserProfileByID aplica el mismo merge que UpdateUserProfile sobre un perfil ajeno.
func (s *Service) UpdateUserProfileByID(ctx context.Context, id string, in UserProfilePatch) (UserProfileView, error) {
	p, err := s.repo.GetUserProfileByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return UserProfileView{}, err
	}
	return s.updateUserProfile(ctx, p, in)
}

func (s *Service) updateUserProfile(ctx context.Context, p UserProfile, in UserProfilePatch) (UserProfileView, error) {
	v := validation.Violations{}
	s.validateContact(ctx, p.UserID, in.UserName, in.Email, v)
	validateText("phone", in.Phone, maxPhone, v)
	validateText("address", in.Address, maxAddress, v)
	validateText("household", in.Household, 0, v)
	validateImage("profileImage", in.ProfileImage, p.ProfileImage, v)
	if in.Favorites.Present && in.Favorites.Null {
		v.Add("favorites", msgNotNull)
	}
	if in.Preferences.Present && in.Preferences.Null {
		v.Add("preferences", msgNotNull)
	}
	if err := v.Err(); err != nil {
		return UserProfileView{}, err
	}

	image, err := s.resolveImage(ctx, in.ProfileImage, p.ProfileImage)
	if err != nil {
		return UserProfileView{}, err
	}
	if err := s.applyContact(ctx, p.UserID, in.UserName, in.Email); err != nil {
		return UserProfileView{}, err
	}

	applyText(&p.Phone, in.Phone)
	applyText(&p.Address, in.Address)
	applyText(&p.Household, in.Household)
	p.ProfileImage = image
	if in.Favorites.HasValue() {
		p.Favorites = append([]json.RawMessage{}, in.Favorites.Value...)
	}
	if in.Preferences.HasValue() {
		p.Preferences = sanitizeTags(in.Preferences.Value)
	}
	p.UpdatedAt = s.now()

	if err := s.repo.UpdateUserProfile(ctx, p); err != nil {
		return UserProfileView{}, err
	}
	return s.userView(ctx, p)
}

type FosterPetInput struct {
	Name  string
	Type  string
	Breed string
	Age   string
}

type FosterProfilePatch struct {
	UserName       patch.Field[string]
	Email          patch.Field[string]
	Phone          patch.Field[string]
	Address        patch.Field[string]
	Household      patch.Field[string]
	ProfileImage   patch.Field[string]
	CurrentFosters patch.Field[[]FosterPetInput]
}

// UpdateFosterProfile aplica un PUT (partial=false: userName, email y
// currentFosters obligatorios) o un PATCH. Si viene currentFosters, la lista
// actual se reemplaza entera: ids nuevos, mismo orden que el payload.
func (s *Service) UpdateFosterProfile(ctx context.Context, userID string, in FosterProfilePatch, partial bool) (FosterProfileView, error) {
	p, err := s.GetOrCreateFosterProfile(ctx, userID)
	if err != nil {
		return FosterProfileView{}, err
	}

	v := validation.Violations{}
	if !partial {
		if !in.UserName.Present {
			v.Add("userName", msgRequired)
		}
		if !in.Email.Present {
			v.Add("email", msgRequired)
		}
		if !in.CurrentFosters.Present {
			v.Add("currentFosters", msgRequired)
		}
	}
	s.validateContact(ctx, p.UserID, in.UserName, in.Email, v)
	validateText("phone", in.Phone, maxPhone, v)
	validateText("address", in.Address, maxAddress, v)
	validateText("household", in.Household, 0, v)
	validateImage("profileImage", in.ProfileImage, p.ProfileImage, v)

	var fosters []FosterPet
	if in.CurrentFosters.Present {
		if in.CurrentFosters.Null {
			v.Add("currentFosters", msgNotNull)
		} else {
			fosters = buildFosterPets(p.ID, in.CurrentFosters.Value, v)
		}
	}
	if err := v.Err(); err != nil {
		return FosterProfileView{}, err
	}

	image, err := s.resolveImage(ctx, in.ProfileImage, p.ProfileImage)
	if err != nil {
		return FosterProfileView{}, err
	}
	if err := s.applyContact(ctx, p.UserID, in.UserName, in.Email); err != nil {
		return FosterProfileView{}, err
	}

	applyText(&p.Phone, in.Phone)
	applyText(&p.Address, in.Address)
	applyText(&p.Household, in.Household)
	p.ProfileImage = image
	p.UpdatedAt = s.now()

	if err := s.repo.UpdateFosterProfile(ctx, p); err != nil {
		return FosterProfileView{}, err
	}
	if in.CurrentFosters.HasValue() {
		if err := s.repo.ReplaceFosterPets(ctx, p.ID, fosters); err != nil {
			return FosterProfileView{}, err
		}
		p.CurrentFosters = fosters
		s.log.Debug("foster pets replaced", map[string]any{"profile_id": p.ID, "count": len(fosters)})
	}

	return s.fosterView(ctx, p)
}

func buildFosterPets(profileID string, in []FosterPetInput, v validation.Violations) []FosterPet {
	out := make([]FosterPet, 0, len(in))
	for i, raw := range in {
		pv := validation.Violations{}

		name := sanitize.Text(raw.Name)
		breed := sanitize.Text(raw.Breed)
		age := sanitize.Text(raw.Age)

		validation.Required("name", name, pv)
		validation.MaxLen("name", name, maxPetName, pv)
		validation.Required("breed", breed, pv)
		validation.MaxLen("breed", breed, maxBreed, pv)
		validation.Required("age", age, pv)
		validation.MaxLen("age", age, maxPetAge, pv)

		typ, ok := parseFosterPetType(raw.Type)
		if !ok {
			pv.Add("type", "invalid choice")
		}

		if !pv.Empty() {
			v.Merge(fmt.Sprintf("currentFosters[%d].", i), pv)
			continue
		}
		out = append(out, FosterPet{
			ID:        uuid.NewString(),
			ProfileID: profileID,
			Name:      name,
			Type:      typ,
			Breed:     breed,
			Age:       age,
			Position:  i,
		})
	}
	return out
}

// validateContact delega en users y renombra "username" a la key del payload.
func (s *Service) validateContact(ctx context.Context, userID string, username, email patch.Field[string], v validation.Violations) {
	if username.Present && username.Null {
		v.Add("userName", msgNotNull)
	}
	if email.Present && email.Null {
		v.Add("email", msgNotNull)
	}
	if s.identities == nil {
		return
	}
	cv := s.identities.ValidateContact(ctx, userID, username.Ptr(), email.Ptr())
	for field, msgs := range cv {
		key := field
		if field == "username" {
			key = "userName"
		}
		for _, m := range msgs {
			v.Add(key, m)
		}
	}
}

func (s *Service) applyContact(ctx context.Context, userID string, username, email patch.Field[string]) error {
	if s.identities == nil || (!username.HasValue() && !email.HasValue()) {
		return nil
	}
	_, err := s.identities.UpdateContact(ctx, userID, username.Ptr(), email.Ptr())
	if fields, ok := validation.AsViolations(err); ok {
		if msgs, ok := fields["username"]; ok {
			delete(fields, "username")
			fields["userName"] = msgs
		}
	}
	return err
}

// resolveImage devuelve la referencia final: data URI => se guarda; null o "" => se limpia;
// la referencia actual => sin cambio.
func (s *Service) resolveImage(ctx context.Context, in patch.Field[string], current string) (string, error) {
	if !in.Present {
		return current, nil
	}
	if in.Null || strings.TrimSpace(in.Value) == "" {
		return "", nil
	}
	if !media.IsDataURI(in.Value) {
		return current, nil
	}
	if s.images == nil {
		return "", errors.New("profiles: image store not configured")
	}
	ref, err := s.images.FromDataURI(ctx, media.DirProfileImages, in.Value)
	if err != nil {
		if errors.Is(err, media.ErrInvalidDataURI) || errors.Is(err, media.ErrUnsupportedImage) {
			return "", validation.Violations{"profileImage": {msgBadImage}}.Err()
		}
		return "", fmt.Errorf("store profile image: %w", err)
	}
	return ref, nil
}

func validateImage(field string, in patch.Field[string], current string, v validation.Violations) {
	if !in.HasValue() {
		return
	}
	val := strings.TrimSpace(in.Value)
	switch {
	case val == "":
	case media.IsDataURI(val):
		if _, _, err := media.ParseDataURI(val); err != nil {
			v.Add(field, msgBadImage)
		}
	case current != "" && (val == current || strings.HasSuffix(val, current)):
	default:
		v.Add(field, msgBadImage)
	}
}

func validateText(field string, in patch.Field[string], max int, v validation.Violations) {
	if !in.Present {
		return
	}
	if in.Null {
		v.Add(field, msgNotNull)
		return
	}
	if max > 0 {
		validation.MaxLen(field, sanitize.Text(in.Value), max, v)
	}
}

func applyText(dst *string, in patch.Field[string]) {
	if in.HasValue() {
		*dst = sanitize.Text(in.Value)
	}
}

// sanitizeTags limpia cada preferencia y conserva la lista tal como llegó,
// entradas vacías incluidas.
func sanitizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		out = append(out, sanitize.Text(t))
	}
	return out
}

func (s *Service) userView(ctx context.Context, p UserProfile) (UserProfileView, error) {
	out := UserProfileView{Profile: p}
	if s.identities == nil {
		return out, nil
	}
	id, err := s.identities.Lookup(ctx, p.UserID)
	if err != nil {
		return UserProfileView{}, err
	}
	out.Username, out.Email = id.User.Username, id.User.Email
	return out, nil
}

func (s *Service) fosterView(ctx context.Context, p FosterProfile) (FosterProfileView, error) {
	out := FosterProfileView{Profile: p}
	if out.Profile.CurrentFosters == nil {
		out.Profile.CurrentFosters = []FosterPet{}
	}
	if s.identities == nil {
		return out, nil
	}
	id, err := s.identities.Lookup(ctx, p.UserID)
	if err != nil {
		return FosterProfileView{}, err
	}
	out.Username, out.Email = id.User.Username, id.User.Email
	return out, nil
}
