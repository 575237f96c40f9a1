package pets

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpx"
	"pet-adoption/internal/platform/patch"
	"pet-adoption/internal/platform/validation"

	"github.com/go-chi/chi/v5"
)

const maxPetBody = 16 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		// Lectura pública
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))

		// Escritura autenticada
		pr.Post("/", createPetHandler(svc))
		pr.Put("/{petID}", updatePetHandler(svc, false))
		pr.Patch("/{petID}", updatePetHandler(svc, true))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})
}

type petResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed"`
	Age       int       `json:"age"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	Image     *string   `json:"image"`
	Sex       Sex       `json:"sex"`
	Weight    *float64  `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// petRequest solo documenta el payload; el decode real detecta presencia de campos.
type petRequest struct {
	Name   string   `json:"name"`
	Breed  string   `json:"breed"`
	Age    int      `json:"age"`
	Type   Type     `json:"type"`
	Status Status   `json:"status"`
	Sex    Sex      `json:"sex"`
	Weight *float64 `json:"weight"`
	Image  *string  `json:"image" example:"data:image/png;base64,..."`
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Más nuevas primero. Filtros opcionales por status y type.
// @Tags pets
// @Produce json
// @Param status query string false "Available | Adopted | Pending"
// @Param type query string false "Dog | Cat"
// @Success 200 {array} petResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f ListFilter
		if q := strings.TrimSpace(r.URL.Query().Get("status")); q != "" {
			st, ok := ParseStatus(q)
			if !ok {
				httpx.JSONError(w, http.StatusBadRequest, "invalid status filter")
				return
			}
			f.Status = st
		}
		if q := strings.TrimSpace(r.URL.Query().Get("type")); q != "" {
			t, ok := ParseType(q)
			if !ok {
				httpx.JSONError(w, http.StatusBadRequest, "invalid type filter")
				return
			}
			f.Type = t
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Detalle de mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toPetResponse(p))
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description Acepta JSON (imagen como data URI) o multipart/form-data (parte `image`).
// @Tags pets
// @Accept json,mpfd
// @Produce json
// @Param payload body petRequest true "Mascota"
// @Success 201 {object} petResponse
// @Failure 400 {object} httpx.ErrorResponse "errores por campo"
// @Failure 401 {object} httpx.ErrorResponse
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireCaller(w, r) {
			return
		}

		in, cleanup, ok := readInput(w, r)
		if !ok {
			return
		}
		defer cleanup()

		p, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PUT exige name, breed, age y type; PATCH es parcial. `image: null` quita la imagen.
// @Tags pets
// @Accept json,mpfd
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body petRequest true "Campos"
// @Success 200 {object} petResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireCaller(w, r) {
			return
		}

		in, cleanup, ok := readInput(w, r)
		if !ok {
			return
		}
		defer cleanup()

		p, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), in, partial)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Borra también sus solicitudes de adopción.
// @Tags pets
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireCaller(w, r) {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID")); err != nil {
			writeError(w, err)
			return
		}
		httpx.NoContent(w)
	}
}

// readInput arma el Input desde JSON o multipart. En multipart todos los valores
// llegan como texto; en JSON age/weight pueden venir como número o texto.
// cleanup libera el archivo subido y debe llamarse después de usar el Input.
func readInput(w http.ResponseWriter, r *http.Request) (Input, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPetBody)
	cleanup := func() {}

	values := map[string]patch.Field[string]{}
	var upload *ImageUpload

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		if err := parseForm(r, mt); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid form")
			return Input{}, nil, false
		}
		if r.MultipartForm != nil {
			form := r.MultipartForm
			cleanup = func() { _ = form.RemoveAll() }
		}
		for key, vals := range r.Form {
			if len(vals) > 0 {
				values[key] = patch.Set(vals[len(vals)-1])
			}
		}
		if r.MultipartForm != nil {
			if fhs := r.MultipartForm.File["image"]; len(fhs) > 0 {
				f, err := fhs[0].Open()
				if err != nil {
					cleanup()
					httpx.JSONError(w, http.StatusBadRequest, "invalid image upload")
					return Input{}, nil, false
				}
				removeForm := cleanup
				cleanup = func() {
					_ = f.Close()
					removeForm()
				}
				upload = &ImageUpload{Filename: fhs[0].Filename, Body: f}
			}
		}
	default:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid body")
			return Input{}, nil, false
		}
		raw, err := patch.Object(body)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid json")
			return Input{}, nil, false
		}
		for key, val := range raw {
			values[key] = scalar(val)
		}
	}

	v := validation.Violations{}
	in := Input{
		Name:   values["name"],
		Breed:  values["breed"],
		Type:   values["type"],
		Status: values["status"],
		Sex:    values["sex"],
		Age:    convert(values, "age", v, "A valid integer is required.", strconv.Atoi),
		Weight: convert(values, "weight", v, "A valid number is required.", func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		}),
	}

	switch img, ok := values["image"]; {
	case upload != nil:
		in.Image = patch.Set(*upload)
	case ok && img.Null:
		in.Image = patch.Null[ImageUpload]()
	case ok && strings.TrimSpace(img.Value) == "":
		in.Image = patch.Null[ImageUpload]()
	case ok:
		in.Image = patch.Set(ImageUpload{DataURI: strings.TrimSpace(img.Value)})
	}

	if !v.Empty() {
		cleanup()
		httpx.JSONFields(w, v)
		return Input{}, nil, false
	}
	return in, cleanup, true
}

func parseForm(r *http.Request, mt string) error {
	if mt == "multipart/form-data" {
		return r.ParseMultipartForm(maxPetBody)
	}
	return r.ParseForm()
}

// scalar convierte un valor JSON (string, número o null) a Field[string].
// Otros tipos se pasan como texto crudo y fallan en la conversión/validación.
func scalar(raw json.RawMessage) patch.Field[string] {
	raw = bytes.TrimSpace(raw)
	if string(raw) == "null" {
		return patch.Null[string]()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return patch.Set(s)
	}
	return patch.Set(string(raw))
}

// convert parsea un campo de texto a T. En multipart "" equivale a null.
func convert[T any](values map[string]patch.Field[string], key string, v validation.Violations, msg string, parse func(string) (T, error)) patch.Field[T] {
	f, ok := values[key]
	if !ok {
		return patch.Field[T]{}
	}
	if f.Null || strings.TrimSpace(f.Value) == "" {
		return patch.Null[T]()
	}
	out, err := parse(strings.TrimSpace(f.Value))
	if err != nil {
		v.Add(key, msg)
		return patch.Field[T]{}
	}
	return patch.Set(out)
}

func requireCaller(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	if fields, ok := validation.AsViolations(err); ok {
		httpx.JSONFields(w, fields)
		return
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "pet not found")
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func toPetResponse(p Pet) petResponse {
	var img *string
	if p.Image != "" {
		img = &p.Image
	}
	return petResponse{
		ID:        p.ID,
		Name:      p.Name,
		Breed:     p.Breed,
		Age:       p.Age,
		Type:      p.Type,
		Status:    p.Status,
		Image:     img,
		Sex:       p.Sex,
		Weight:    p.Weight,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
