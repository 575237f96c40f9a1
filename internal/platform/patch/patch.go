package patch

import (
	"encoding/json"
	"fmt"
)

// Field distingue "no enviado" de "enviado null" y de "enviado con valor".
// Los PATCH decodifican primero a map[string]json.RawMessage y luego usan Get.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Set construye un Field presente con valor (útil en tests y en multipart).
func Set[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// Null construye un Field presente con null.
func Null[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

// HasValue indica presente y no null.
func (f Field[T]) HasValue() bool {
	return f.Present && !f.Null
}

// Ptr devuelve nil salvo que el campo tenga valor.
func (f Field[T]) Ptr() *T {
	if !f.HasValue() {
		return nil
	}
	v := f.Value
	return &v
}

// Get lee key de raw. Un error indica que el tipo JSON no coincide.
func Get[T any](raw map[string]json.RawMessage, key string) (Field[T], error) {
	v, ok := raw[key]
	if !ok {
		return Field[T]{}, nil
	}
	if string(v) == "null" {
		return Null[T](), nil
	}
	var out T
	if err := json.Unmarshal(v, &out); err != nil {
		return Field[T]{}, fmt.Errorf("%s: %w", key, err)
	}
	return Set(out), nil
}

// Object decodifica el body de un PATCH/PUT.
func Object(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}
