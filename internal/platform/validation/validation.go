package validation

import (
	"errors"
	"net/mail"
	"sort"
	"strings"
)

// Violations agrupa mensajes por campo (p.ej. "username" -> ["already taken"]).
type Violations map[string][]string

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Merge copia las violaciones de other, con prefijo opcional ("currentFosters[0].").
func (v Violations) Merge(prefix string, other Violations) {
	for k, msgs := range other {
		for _, m := range msgs {
			v.Add(prefix+k, m)
		}
	}
}

// Fields devuelve los campos con error, ordenados.
func (v Violations) Fields() []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Err devuelve nil si no hay violaciones.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Fields: v}
}

// Error envuelve Violations para viajar como error por los servicios.
type Error struct {
	Fields Violations
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Fields.Fields(), ", ")
}

// AsViolations extrae las violaciones de err, si las tiene.
func AsViolations(err error) (Violations, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}

// Basic validators

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if len([]rune(value)) > max {
		v.Add(field, "too long")
	}
}

func MinLen(field, value string, min int, v Violations) {
	if len([]rune(value)) < min {
		v.Add(field, "too short")
	}
}

func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "invalid email")
	}
}

func OneOf[T ~string](field string, value T, allowed []T, v Violations) {
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v.Add(field, "invalid choice")
}
