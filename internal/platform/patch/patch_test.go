package patch

import (
	"encoding/json"
	"testing"
)

func TestGet_AbsentNullValue(t *testing.T) {
	raw, err := Object([]byte(`{"favorites":[],"image":null,"name":"Rex","age":"x"}`))
	if err != nil {
		t.Fatalf("Object: %v", err)
	}

	fav, err := Get[[]json.RawMessage](raw, "favorites")
	if err != nil || !fav.HasValue() || len(fav.Value) != 0 {
		t.Fatalf("expected present empty list, got %#v (%v)", fav, err)
	}

	img, err := Get[string](raw, "image")
	if err != nil || !img.Present || !img.Null {
		t.Fatalf("expected present null, got %#v (%v)", img, err)
	}
	if img.Ptr() != nil {
		t.Fatalf("expected nil Ptr for null")
	}

	prefs, err := Get[[]string](raw, "preferences")
	if err != nil || prefs.Present {
		t.Fatalf("expected absent, got %#v (%v)", prefs, err)
	}

	name, err := Get[string](raw, "name")
	if err != nil || name.Ptr() == nil || *name.Ptr() != "Rex" {
		t.Fatalf("expected Rex, got %#v (%v)", name, err)
	}

	if _, err := Get[int](raw, "age"); err == nil {
		t.Fatalf("expected type error for age")
	}
}

func TestObject_NullBody(t *testing.T) {
	raw, err := Object([]byte(`null`))
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if raw == nil || len(raw) != 0 {
		t.Fatalf("expected empty map, got %#v", raw)
	}
	if _, err := Object([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for non-object body")
	}
}
