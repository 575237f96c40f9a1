package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text elimina cualquier markup de un campo de texto libre (dirección, descripción
// del hogar, etc.) y recorta espacios. Las entidades que bluemonday escapa se
// devuelven a texto plano porque el valor se sirve como JSON, no como HTML.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
