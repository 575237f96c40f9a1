package pets

import (
	"strings"
	"time"
)

// Type define las especies que maneja el refugio.
// @Enum Dog, Cat
type Type string

const (
	TypeDog Type = "Dog"
	TypeCat Type = "Cat"
)

// Status define la disponibilidad de la mascota.
// @Enum Available, Adopted, Pending
type Status string

const (
	StatusAvailable Status = "Available"
	StatusAdopted   Status = "Adopted"
	StatusPending   Status = "Pending"
)

// Sex define el sexo de la mascota.
// @Enum MALE, FEMALE, UNKNOWN
type Sex string

const (
	SexMale    Sex = "MALE"
	SexFemale  Sex = "FEMALE"
	SexUnknown Sex = "UNKNOWN"
)

var (
	Types    = []Type{TypeDog, TypeCat}
	Statuses = []Status{StatusAvailable, StatusAdopted, StatusPending}
	Sexes    = []Sex{SexMale, SexFemale, SexUnknown}
)

// Pet es una mascota publicada para adopción.
type Pet struct {
	ID string

	Name  string
	Breed string
	Age   int
	Type  Type
	Sex   Sex

	Status Status
	Image  string // referencia opaca; vacío = sin imagen

	Weight *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter: campos vacíos no filtran.
type ListFilter struct {
	Status Status
	Type   Type
}

const (
	maxName  = 100
	maxBreed = 100
)

// parseEnum acepta el valor sin importar mayúsculas y devuelve la forma canónica.
func parseEnum[T ~string](s string, allowed []T) (T, bool) {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if strings.EqualFold(s, string(a)) {
			return a, true
		}
	}
	return "", false
}

func ParseType(s string) (Type, bool)     { return parseEnum(s, Types) }
func ParseStatus(s string) (Status, bool) { return parseEnum(s, Statuses) }
func ParseSex(s string) (Sex, bool)       { return parseEnum(s, Sexes) }
