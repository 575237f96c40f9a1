package media

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrNotDataURI       = errors.New("not a data uri")
	ErrInvalidDataURI   = errors.New("invalid image data uri")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var allowedExt = map[string]string{
	"png":  "png",
	"jpg":  "jpg",
	"jpeg": "jpeg",
	"gif":  "gif",
	"webp": "webp",
}

// IsDataURI indica si s tiene forma "data:image/...".
func IsDataURI(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:image")
}

// ParseDataURI decodifica "data:image/<ext>;base64,<payload>".
func ParseDataURI(s string) (ext string, data []byte, err error) {
	s = strings.TrimSpace(s)
	if !IsDataURI(s) {
		return "", nil, ErrNotDataURI
	}

	header, payload, ok := strings.Cut(s, ";base64,")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}

	mime := strings.TrimPrefix(header, "data:")
	_, sub, ok := strings.Cut(mime, "/")
	if !ok || sub == "" {
		return "", nil, ErrInvalidDataURI
	}
	ext, ok = allowedExt[strings.ToLower(sub)]
	if !ok {
		return "", nil, ErrUnsupportedImage
	}

	data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(data) == 0 {
		return "", nil, ErrInvalidDataURI
	}
	return ext, data, nil
}

// ExtFromFilename valida la extensión de un archivo subido por multipart.
func ExtFromFilename(name string) (string, error) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "", ErrUnsupportedImage
	}
	ext, ok := allowedExt[strings.ToLower(name[i+1:])]
	if !ok {
		return "", ErrUnsupportedImage
	}
	return ext, nil
}
