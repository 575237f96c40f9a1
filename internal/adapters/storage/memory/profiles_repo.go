package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-adoption/internal/domain/profiles"
)

type profileRepo struct {
	mu sync.RWMutex

	userProfiles   map[string]profiles.UserProfile   // userID -> perfil
	fosterProfiles map[string]profiles.FosterProfile // userID -> perfil (sin pets)
	fosterPets     map[string][]profiles.FosterPet   // profileID -> pets
}

func NewProfileRepo() profiles.Repository {
	return &profileRepo{
		userProfiles:   make(map[string]profiles.UserProfile),
		fosterProfiles: make(map[string]profiles.FosterProfile),
		fosterPets:     make(map[string][]profiles.FosterPet),
	}
}

func (r *profileRepo) GetUserProfile(ctx context.Context, userID string) (profiles.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.userProfiles[userID]
	if !ok {
		return profiles.UserProfile{}, profiles.ErrNotFound
	}
	return cloneUserProfile(p), nil
}

func (r *profileRepo) GetUserProfileByID(ctx context.Context, id string) (profiles.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.userProfiles {
		if p.ID == id {
			return cloneUserProfile(p), nil
		}
	}
	return profiles.UserProfile{}, profiles.ErrNotFound
}

// ListUserProfiles devuelve los perfiles por fecha de creación.
func (r *profileRepo) ListUserProfiles(ctx context.Context) ([]profiles.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profiles.UserProfile, 0, len(r.userProfiles))
	for _, p := range r.userProfiles {
		out = append(out, cloneUserProfile(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *profileRepo) CreateUserProfile(ctx context.Context, p profiles.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.UserID) == "" {
		return errors.New("profile id and user id required")
	}
	if _, exists := r.userProfiles[p.UserID]; exists {
		return profiles.ErrConflict
	}
	r.userProfiles[p.UserID] = cloneUserProfile(p)
	return nil
}

func (r *profileRepo) UpdateUserProfile(ctx context.Context, p profiles.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.userProfiles[p.UserID]
	if !ok || prev.ID != p.ID {
		return profiles.ErrNotFound
	}
	r.userProfiles[p.UserID] = cloneUserProfile(p)
	return nil
}

func (r *profileRepo) GetFosterProfile(ctx context.Context, userID string) (profiles.FosterProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.fosterProfiles[userID]
	if !ok {
		return profiles.FosterProfile{}, profiles.ErrNotFound
	}
	p.CurrentFosters = append([]profiles.FosterPet{}, r.fosterPets[p.ID]...)
	sort.SliceStable(p.CurrentFosters, func(i, j int) bool {
		return p.CurrentFosters[i].Position < p.CurrentFosters[j].Position
	})
	return p, nil
}

func (r *profileRepo) CreateFosterProfile(ctx context.Context, p profiles.FosterProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.UserID) == "" {
		return errors.New("profile id and user id required")
	}
	if _, exists := r.fosterProfiles[p.UserID]; exists {
		return profiles.ErrConflict
	}
	p.CurrentFosters = nil
	r.fosterProfiles[p.UserID] = p
	return nil
}

func (r *profileRepo) UpdateFosterProfile(ctx context.Context, p profiles.FosterProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.fosterProfiles[p.UserID]
	if !ok || prev.ID != p.ID {
		return profiles.ErrNotFound
	}
	p.CurrentFosters = nil
	r.fosterProfiles[p.UserID] = p
	return nil
}

// ReplaceFosterPets reemplaza la lista bajo un único lock.
func (r *profileRepo) ReplaceFosterPets(ctx context.Context, profileID string, pets []profiles.FosterPet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for _, p := range r.fosterProfiles {
		if p.ID == profileID {
			found = true
			break
		}
	}
	if !found {
		return profiles.ErrNotFound
	}

	next := make([]profiles.FosterPet, 0, len(pets))
	seen := make(map[string]struct{}, len(pets))
	for _, fp := range pets {
		if strings.TrimSpace(fp.ID) == "" {
			return errors.New("foster pet id required")
		}
		if _, dup := seen[fp.ID]; dup {
			return errors.New("duplicate foster pet id")
		}
		seen[fp.ID] = struct{}{}
		fp.ProfileID = profileID
		next = append(next, fp)
	}
	r.fosterPets[profileID] = next
	return nil
}

func cloneUserProfile(p profiles.UserProfile) profiles.UserProfile {
	favs := make([]json.RawMessage, 0, len(p.Favorites))
	for _, f := range p.Favorites {
		favs = append(favs, append(json.RawMessage(nil), f...))
	}
	p.Favorites = favs
	p.Preferences = append([]string{}, p.Preferences...)
	return p
}
