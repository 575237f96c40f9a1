package adoptions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/platform/httpx"
	"pet-adoption/internal/platform/patch"
	"pet-adoption/internal/platform/validation"

	"github.com/go-chi/chi/v5"
)

const maxRequestBody = 1 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/applications", func(ar chi.Router) {
		ar.Get("/", listRequestsHandler(svc))
		ar.Post("/", createRequestHandler(svc))
		// DELETE sin id = borrado masivo del conjunto filtrado
		ar.Delete("/", bulkDeleteHandler(svc))

		ar.Get("/{requestID}", getRequestHandler(svc))
		ar.Put("/{requestID}", updateRequestHandler(svc, false))
		ar.Patch("/{requestID}", updateRequestHandler(svc, true))
		ar.Delete("/{requestID}", deleteRequestHandler(svc))
	})
}

type requestResponse struct {
	ID            string    `json:"id"`
	Pet           string    `json:"pet"`
	PetName       string    `json:"pet_name"`
	RequesterName string    `json:"requester_name"`
	Email         string    `json:"email"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type requestPayload struct {
	Pet           string `json:"pet"`
	RequesterName string `json:"requester_name"`
	Email         string `json:"email"`
	Status        Status `json:"status,omitempty"`
}

type bulkDeleteResponse struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

// listRequestsHandler godoc
// @Summary Listar solicitudes de adopción
// @Description Más nuevas primero. Filtros exactos por requester_name y email.
// @Tags adoptions
// @Produce json
// @Param requester_name query string false "Nombre del solicitante"
// @Param email query string false "Email del solicitante"
// @Success 200 {array} requestResponse
// @Router /applications [get]
func listRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), filterFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]requestResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toRequestResponse(it))
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

// createRequestHandler godoc
// @Summary Crear solicitud de adopción
// @Description El status siempre arranca en Pending.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param payload body requestPayload true "Solicitud"
// @Success 201 {object} requestResponse
// @Failure 400 {object} httpx.ErrorResponse "errores por campo"
// @Router /applications [post]
func createRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := readInput(w, r)
		if !ok {
			return
		}
		// status es de solo lectura al crear
		in.Status = patch.Field[string]{}

		view, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, toRequestResponse(view))
	}
}

func getRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toRequestResponse(view))
	}
}

// updateRequestHandler godoc
// @Summary Actualizar solicitud
// @Description PATCH se usa sobre todo para cambiar el status (Pending, Approved, Rejected).
// @Tags adoptions
// @Accept json
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Param payload body requestPayload true "Campos"
// @Success 200 {object} requestResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /applications/{requestID} [patch]
func updateRequestHandler(svc *Service, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := readInput(w, r)
		if !ok {
			return
		}

		view, err := svc.Update(r.Context(), chi.URLParam(r, "requestID"), in, partial)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toRequestResponse(view))
	}
}

func deleteRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "requestID")); err != nil {
			writeError(w, err)
			return
		}
		httpx.NoContent(w)
	}
}

// bulkDeleteHandler godoc
// @Summary Borrado masivo de solicitudes
// @Description Sin id borra todas las solicitudes que coinciden con los filtros (o todas) e informa cuántas.
// @Tags adoptions
// @Produce json
// @Param requester_name query string false "Nombre del solicitante"
// @Param email query string false "Email del solicitante"
// @Success 200 {object} bulkDeleteResponse
// @Router /applications [delete]
func bulkDeleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.DeleteMatching(r.Context(), filterFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, bulkDeleteResponse{
			Deleted: n,
			Message: fmt.Sprintf("Successfully deleted %d records.", n),
		})
	}
}

func filterFrom(r *http.Request) ListFilter {
	q := r.URL.Query()
	return ListFilter{
		RequesterName: strings.TrimSpace(q.Get("requester_name")),
		Email:         strings.TrimSpace(q.Get("email")),
	}
}

func readInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid body")
		return Input{}, false
	}
	raw, err := patch.Object(body)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json")
		return Input{}, false
	}
	return Input{
		PetID:         idField(raw, "pet"),
		RequesterName: textField(raw, "requester_name"),
		Email:         textField(raw, "email"),
		Status:        textField(raw, "status"),
	}, true
}

// idField acepta el id de la mascota como string o número.
func idField(raw map[string]json.RawMessage, key string) patch.Field[string] {
	v, ok := raw[key]
	if !ok {
		return patch.Field[string]{}
	}
	v = bytes.TrimSpace(v)
	if string(v) == "null" {
		return patch.Null[string]()
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return patch.Set(s)
	}
	return patch.Set(string(v))
}

// textField: un valor que no es string se trata como texto crudo y lo rechaza la validación.
func textField(raw map[string]json.RawMessage, key string) patch.Field[string] {
	f, err := patch.Get[string](raw, key)
	if err != nil {
		return patch.Set(string(raw[key]))
	}
	return f
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
		httpx.JSONError(w, http.StatusNotFound, "adoption request not found")
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func toRequestResponse(v View) requestResponse {
	return requestResponse{
		ID:            v.ID,
		Pet:           v.PetID,
		PetName:       v.PetName,
		RequesterName: v.RequesterName,
		Email:         v.Email,
		Status:        v.Status,
		CreatedAt:     v.CreatedAt,
	}
}
