package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Two cats & a yard  ", "Two cats & a yard"},
		{"<b>Big</b> garden", "Big garden"},
		{"Quiet<script>alert('x')</script>", "Quiet"},
	}
	for _, c := range cases {
		if got := Text(c.in); got != c.want {
			t.Fatalf("Text(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
