package validation

import (
	"errors"
	"fmt"
	"testing"
)

func TestViolations_ErrRoundTrip(t *testing.T) {
	v := Violations{}
	if v.Err() != nil {
		t.Fatalf("empty violations must not produce an error")
	}

	Required("username", " ", v)
	MinLen("password", "abc", 6, v)
	Email("email", "not-an-email", v)
	OneOf("role", "owner", []string{"admin", "adopter"}, v)

	err := fmt.Errorf("register: %w", v.Err())
	got, ok := AsViolations(err)
	if !ok {
		t.Fatalf("expected violations through wrapped error")
	}
	want := []string{"email", "password", "role", "username"}
	fields := got.Fields()
	if len(fields) != len(want) {
		t.Fatalf("expected %v, got %v", want, fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, fields)
		}
	}
}

func TestViolations_MergePrefix(t *testing.T) {
	inner := Violations{}
	inner.Add("name", "required")

	outer := Violations{}
	outer.Merge("currentFosters[1].", inner)
	if _, ok := outer["currentFosters[1].name"]; !ok {
		t.Fatalf("expected prefixed key, got %#v", outer)
	}
}

func TestEmail_AcceptsPlainAddress(t *testing.T) {
	v := Violations{}
	Email("email", "alice@example.com", v)
	Email("email2", "", v)
	if !v.Empty() {
		t.Fatalf("expected no violations, got %#v", v)
	}
	if _, ok := AsViolations(errors.New("other")); ok {
		t.Fatalf("plain errors must not look like violations")
	}
}
