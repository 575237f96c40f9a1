package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-adoption/internal/domain/users"
)

type userRepo struct {
	mu         sync.RWMutex
	byID       map[string]users.User
	byUsername map[string]string // username -> id
	accounts   map[string]users.Account
}

func NewUserRepo() users.Repository {
	return &userRepo{
		byID:       make(map[string]users.User),
		byUsername: make(map[string]string),
		accounts:   make(map[string]users.Account),
	}
}

// CreateWithAccount inserta ambos bajo el mismo lock: o quedan los dos o ninguno.
func (r *userRepo) CreateWithAccount(ctx context.Context, u users.User, a users.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if a.UserID != u.ID {
		return errors.New("account must belong to the new user")
	}
	if _, exists := r.byID[u.ID]; exists {
		return users.ErrConflict
	}
	if _, taken := r.byUsername[u.Username]; taken {
		return users.ErrConflict
	}

	r.byID[u.ID] = u
	r.byUsername[u.Username] = u.ID
	r.accounts[u.ID] = a
	return nil
}

func (r *userRepo) UpdateUser(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.byID[u.ID]
	if !ok {
		return users.ErrNotFound
	}
	if prev.Username != u.Username {
		if _, taken := r.byUsername[u.Username]; taken {
			return users.ErrConflict
		}
		delete(r.byUsername, prev.Username)
		r.byUsername[u.Username] = u.ID
	}
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *userRepo) List(ctx context.Context) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *userRepo) GetAccount(ctx context.Context, userID string) (users.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[userID]
	if !ok {
		return users.Account{}, users.ErrNotFound
	}
	return a, nil
}

func (r *userRepo) SaveAccount(ctx context.Context, a users.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.UserID]; !ok {
		return users.ErrNotFound
	}
	if prev, ok := r.accounts[a.UserID]; ok {
		a.CreatedAt = prev.CreatedAt
	}
	r.accounts[a.UserID] = a
	return nil
}
