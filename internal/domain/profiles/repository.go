package profiles

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict: ya existe un perfil para ese usuario (índice único sobre user_id).
	ErrConflict = errors.New("conflict")
)

type Repository interface {
	GetUserProfile(ctx context.Context, userID string) (UserProfile, error)
	GetUserProfileByID(ctx context.Context, id string) (UserProfile, error)
	// ListUserProfiles ordena por CreatedAt ascendente.
	ListUserProfiles(ctx context.Context) ([]UserProfile, error)
	CreateUserProfile(ctx context.Context, p UserProfile) error
	UpdateUserProfile(ctx context.Context, p UserProfile) error

	// GetFosterProfile incluye CurrentFosters ordenados por Position.
	GetFosterProfile(ctx context.Context, userID string) (FosterProfile, error)
	CreateFosterProfile(ctx context.Context, p FosterProfile) error
	// UpdateFosterProfile guarda solo los campos escalares.
	UpdateFosterProfile(ctx context.Context, p FosterProfile) error
	// ReplaceFosterPets borra todos los FosterPet del perfil y crea los recibidos,
	// en una única operación atómica.
	ReplaceFosterPets(ctx context.Context, profileID string, pets []FosterPet) error
}
