package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/validation"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

const (
	usernameMaxLen    = 150
	passwordMinLen    = 6
	msgUsernameTaken  = "A user with that username already exists."
	msgInvalidUsernme = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// ProfileProvisioner evita importar el paquete profiles (rompe ciclos).
type ProfileProvisioner interface {
	EnsureUserProfile(ctx context.Context, userID string) error
}

type Service struct {
	repo     Repository
	hasher   PasswordHasher
	profiles ProfileProvisioner
	log      logger.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewService(repo Repository, hasher PasswordHasher, log logger.Logger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		hasher: hasher,
		log:    log,
		now:    time.Now,
	}
}

// SetProfileProvisioner conecta el alta de perfiles; se llama al armar el router
// porque profiles también depende de este servicio.
func (s *Service) SetProfileProvisioner(p ProfileProvisioner) {
	s.profiles = p
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	Email     string
	Role      *string // nil => DefaultRole
}

// Register crea identidad + cuenta (rol pedido o DefaultRole) y provisiona el
// UserProfile. Es el único camino que crea cuentas.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Identity, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	v := validation.Violations{}
	s.validateUsername(ctx, "username", username, "", v)
	validation.Required("password", in.Password, v)
	if _, bad := v["password"]; !bad {
		validation.MinLen("password", in.Password, passwordMinLen, v)
	}
	validation.Email("email", email, v)

	role := DefaultRole
	if in.Role != nil {
		r, ok := ParseRole(*in.Role)
		if !ok {
			v.Add("role", "invalid choice")
		}
		role = r
	}
	if err := v.Err(); err != nil {
		return Identity{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	a := Account{
		UserID:    u.ID,
		Role:      DeriveRole(u, role),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateWithAccount(ctx, u, a); err != nil {
		if errors.Is(err, ErrConflict) {
			return Identity{}, validation.Violations{"username": {msgUsernameTaken}}.Err()
		}
		return Identity{}, err
	}

	s.provisionProfile(ctx, u.ID)

	s.log.Info("user registered", map[string]any{"user_id": u.ID, "role": string(a.Role)})
	return Identity{User: u, Account: &a}, nil
}

// Login valida credenciales. Usuario inexistente y password incorrecta devuelven
// el mismo error.
func (s *Service) Login(ctx context.Context, username, password string) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Identity{}, ErrInvalidInput
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Identity{}, err
		}
		// misma latencia que una comparación real
		_ = s.hasher.Compare(s.dummyPasswordHash(), password)
		return Identity{}, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}

	return s.identityOf(ctx, u)
}

// SaveAccount persiste la cuenta de userID aplicando DeriveRole.
// requested nil conserva el rol actual (o DefaultRole si la cuenta no existe).
// Todo camino que modifica una identidad lo llama explícitamente.
func (s *Service) SaveAccount(ctx context.Context, userID string, requested *Role) (Account, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Account{}, ErrInvalidInput
	}
	if requested != nil {
		if _, ok := ParseRole(string(*requested)); !ok {
			return Account{}, validation.Violations{"role": {"invalid choice"}}.Err()
		}
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Account{}, err
	}

	now := s.now()
	a, err := s.repo.GetAccount(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		a = Account{UserID: userID, Role: DefaultRole, CreatedAt: now}
	default:
		return Account{}, err
	}

	role := a.Role
	if requested != nil {
		role = *requested
	}
	a.Role = DeriveRole(u, role)
	a.UpdatedAt = now

	if err := s.repo.SaveAccount(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}

type UpdateAccountInput struct {
	Role        *Role
	IsStaff     *bool
	IsSuperuser *bool
}

// UpdateAccount cambia flags de privilegio y/o rol, y vuelve a guardar la cuenta.
func (s *Service) UpdateAccount(ctx context.Context, userID string, in UpdateAccountInput) (Identity, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return Identity{}, err
	}
	if in.Role != nil {
		if _, ok := ParseRole(string(*in.Role)); !ok {
			return Identity{}, validation.Violations{"role": {"invalid choice"}}.Err()
		}
	}

	changed := false
	if in.IsStaff != nil && *in.IsStaff != u.IsStaff {
		u.IsStaff = *in.IsStaff
		changed = true
	}
	if in.IsSuperuser != nil && *in.IsSuperuser != u.IsSuperuser {
		u.IsSuperuser = *in.IsSuperuser
		changed = true
	}
	if changed {
		u.UpdatedAt = s.now()
		if err := s.repo.UpdateUser(ctx, u); err != nil {
			return Identity{}, err
		}
	}

	a, err := s.SaveAccount(ctx, u.ID, in.Role)
	if err != nil {
		return Identity{}, err
	}
	return Identity{User: u, Account: &a}, nil
}

// ValidateContact valida un cambio de username/email sin aplicarlo.
// Las keys del resultado son "username" y "email".
func (s *Service) ValidateContact(ctx context.Context, userID string, username, email *string) validation.Violations {
	v := validation.Violations{}
	if username != nil {
		s.validateUsername(ctx, "username", strings.TrimSpace(*username), userID, v)
	}
	if email != nil {
		validation.Email("email", strings.TrimSpace(*email), v)
	}
	return v
}

// UpdateContact aplica username/email (nil = no tocar).
func (s *Service) UpdateContact(ctx context.Context, userID string, username, email *string) (User, error) {
	if v := s.ValidateContact(ctx, userID, username, email); !v.Empty() {
		return User{}, v.Err()
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if username == nil && email == nil {
		return u, nil
	}
	if username != nil {
		u.Username = strings.TrimSpace(*username)
	}
	if email != nil {
		u.Email = strings.TrimSpace(*email)
	}
	u.UpdatedAt = s.now()

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, ErrConflict) {
			return User{}, validation.Violations{"username": {msgUsernameTaken}}.Err()
		}
		return User{}, err
	}
	if _, err := s.SaveAccount(ctx, u.ID, nil); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Lookup(ctx context.Context, userID string) (Identity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Identity{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	return s.identityOf(ctx, u)
}

func (s *Service) List(ctx context.Context) ([]Identity, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Identity, 0, len(items))
	for _, u := range items {
		id, err := s.identityOf(ctx, u)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// EnsureSuperuser crea (o promueve) un superusuario. Idempotente.
func (s *Service) EnsureSuperuser(ctx context.Context, username, password, email string) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Identity{}, ErrInvalidInput
	}

	u, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if !u.IsSuperuser || !u.IsStaff {
			u.IsSuperuser, u.IsStaff = true, true
			u.UpdatedAt = s.now()
			if err := s.repo.UpdateUser(ctx, u); err != nil {
				return Identity{}, err
			}
		}
		a, err := s.SaveAccount(ctx, u.ID, nil)
		if err != nil {
			return Identity{}, err
		}
		s.provisionProfile(ctx, u.ID)
		return Identity{User: u, Account: &a}, nil
	case !errors.Is(err, ErrNotFound):
		return Identity{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u = User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		IsStaff:      true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	a := Account{UserID: u.ID, Role: DeriveRole(u, DefaultRole), CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateWithAccount(ctx, u, a); err != nil {
		return Identity{}, err
	}
	s.provisionProfile(ctx, u.ID)
	s.log.Info("superuser created", map[string]any{"user_id": u.ID, "username": u.Username})
	return Identity{User: u, Account: &a}, nil
}

func (s *Service) identityOf(ctx context.Context, u User) (Identity, error) {
	a, err := s.repo.GetAccount(ctx, u.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{User: u}, nil
		}
		return Identity{}, err
	}
	return Identity{User: u, Account: &a}, nil
}

// provisionProfile crea el UserProfile de una identidad ya guardada. Un fallo
// no deshace el registro: el perfil se crea en el primer GET /user-profile.
func (s *Service) provisionProfile(ctx context.Context, userID string) {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.EnsureUserProfile(ctx, userID); err != nil {
		s.log.Error("user profile provisioning failed", map[string]any{"user_id": userID, "err": err})
	}
}

func (s *Service) validateUsername(ctx context.Context, field, username, selfID string, v validation.Violations) {
	if username == "" {
		v.Add(field, "required")
		return
	}
	if len([]rune(username)) > usernameMaxLen {
		v.Add(field, "too long")
		return
	}
	if !usernamePattern.MatchString(username) {
		v.Add(field, msgInvalidUsernme)
		return
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil && existing.ID != selfID {
		v.Add(field, msgUsernameTaken)
	}
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
