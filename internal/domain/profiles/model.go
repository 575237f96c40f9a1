package profiles

import (
	"encoding/json"
	"strings"
	"time"
)

// UserProfile guarda los datos extendidos de un usuario adoptante. 1:1 con users.User.
type UserProfile struct {
	ID     string
	UserID string

	Phone        string
	Address      string
	Household    string
	ProfileImage string // referencia opaca (URL); vacío = sin imagen

	// Favorites son objetos JSON opacos que arma el frontend (p.ej. {"pet": {...}}).
	Favorites   []json.RawMessage
	Preferences []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FosterPetType define los tipos aceptados en un FosterPet.
// @Enum Dog, Cat, Bird, Other
type FosterPetType string

const (
	FosterPetDog   FosterPetType = "Dog"
	FosterPetCat   FosterPetType = "Cat"
	FosterPetBird  FosterPetType = "Bird"
	FosterPetOther FosterPetType = "Other"
)

var FosterPetTypes = []FosterPetType{FosterPetDog, FosterPetCat, FosterPetBird, FosterPetOther}

// FosterPet pertenece a un único FosterProfile y se borra con él.
type FosterPet struct {
	ID        string
	ProfileID string

	Name  string
	Type  FosterPetType
	Breed string
	Age   string // texto libre: "2 Years", "3 Months"

	Position int
}

// FosterProfile es el perfil de un hogar de tránsito. Se crea la primera vez que se accede.
type FosterProfile struct {
	ID     string
	UserID string

	Phone        string
	Address      string
	Household    string
	ProfileImage string

	FosteredCount int
	AdoptionCount int

	CurrentFosters []FosterPet

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Límites de longitud de los campos de perfil.
const (
	maxPhone   = 20
	maxAddress = 255
	maxPetName = 100
	maxBreed   = 100
	maxPetAge  = 50
)

func newUserProfile(id, userID string, now time.Time) UserProfile {
	return UserProfile{
		ID:          id,
		UserID:      userID,
		Favorites:   []json.RawMessage{},
		Preferences: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newFosterProfile(id, userID string, now time.Time) FosterProfile {
	return FosterProfile{
		ID:             id,
		UserID:         userID,
		CurrentFosters: []FosterPet{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func parseFosterPetType(s string) (FosterPetType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range FosterPetTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}
