package profiles

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpx"
	"pet-adoption/internal/platform/patch"
	"pet-adoption/internal/platform/validation"

	"github.com/go-chi/chi/v5"
)

// Los perfiles pueden traer una imagen en base64 dentro del JSON.
const maxProfileBody = 16 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/user-profile", func(pr chi.Router) {
		pr.Get("/", getUserProfileHandler(svc))
		pr.Put("/", updateUserProfileHandler(svc))
		pr.Patch("/", updateUserProfileHandler(svc))
	})

	// Administración de perfiles (solo admin)
	r.Route("/user-profiles", func(pr chi.Router) {
		pr.Get("/", listUserProfilesHandler(svc))
		pr.Get("/{profileID}", getUserProfileByIDHandler(svc))
		pr.Put("/{profileID}", updateUserProfileByIDHandler(svc))
		pr.Patch("/{profileID}", updateUserProfileByIDHandler(svc))
	})

	r.Route("/profile", func(pr chi.Router) {
		pr.Get("/", getFosterProfileHandler(svc))
		pr.Put("/", updateFosterProfileHandler(svc, false))
		pr.Patch("/", updateFosterProfileHandler(svc, true))
	})
}

type userProfileResponse struct {
	UserName     string            `json:"userName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	Household    string            `json:"household"`
	Favorites    []json.RawMessage `json:"favorites" swaggertype:"array,object"`
	Preferences  []string          `json:"preferences"`
	ProfileImage *string           `json:"profileImage"`
}

type adminUserProfileResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user"`
	userProfileResponse
}

type fosterPetResponse struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Type  FosterPetType `json:"type"`
	Breed string        `json:"breed"`
	Age   string        `json:"age"`
}

type fosterProfileResponse struct {
	UserName       string              `json:"userName"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	Address        string              `json:"address"`
	Household      string              `json:"household"`
	CurrentFosters []fosterPetResponse `json:"currentFosters"`
	ProfileImage   *string             `json:"profileImage"`
	FosteredCount  int                 `json:"fosteredCount"`
	AdoptionCount  int                 `json:"adoptionCount"`
}

// fosterPetRequest acepta age como texto o número ("2 Years" o 2).
type fosterPetRequest struct {
	Name  string     `json:"name"`
	Type  string     `json:"type"`
	Breed string     `json:"breed"`
	Age   flexString `json:"age"`
}

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// getUserProfileHandler godoc
// @Summary Perfil del usuario autenticado
// @Description Devuelve el perfil; si no existe lo crea con valores por defecto.
// @Tags profiles
// @Produce json
// @Success 200 {object} userProfileResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /user-profile [get]
func getUserProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}

		view, err := svc.UserProfileFor(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toUserProfileResponse(view))
	}
}

// updateUserProfileHandler godoc
// @Summary Actualizar perfil de usuario
// @Description PUT y PATCH hacen merge: campos ausentes no cambian; `favorites: []` limpia favoritos.
// @Tags profiles
// @Accept json
// @Produce json
// @Param payload body userProfileResponse false "Campos a actualizar"
// @Success 200 {object} userProfileResponse
// @Failure 400 {object} httpx.ErrorResponse "errores por campo"
// @Failure 401 {object} httpx.ErrorResponse
// @Router /user-profile [patch]
func updateUserProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}

		in, ok := readUserProfilePatch(w, r)
		if !ok {
			return
		}

		view, err := svc.UpdateUserProfile(r.Context(), uid, in)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toUserProfileResponse(view))
	}
}

// listUserProfilesHandler godoc
// @Summary Listar perfiles de usuario
// @Description Vista de administración sobre todos los perfiles, por fecha de creación.
// @Tags profiles
// @Produce json
// @Success 200 {array} adminUserProfileResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /user-profiles [get]
func listUserProfilesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, svc) {
			return
		}

		items, err := svc.ListUserProfiles(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]adminUserProfileResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toAdminUserProfileResponse(it))
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

func getUserProfileByIDHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, svc) {
			return
		}

		view, err := svc.UserProfileByID(r.Context(), chi.URLParam(r, "profileID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toAdminUserProfileResponse(view))
	}
}

// updateUserProfileByIDHandler godoc
// @Summary Actualizar un perfil de usuario (admin)
// @Description Mismo merge que /user-profile, sobre el perfil indicado.
// @Tags profiles
// @Accept json
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param payload body userProfileResponse false "Campos a actualizar"
// @Success 200 {object} adminUserProfileResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /user-profiles/{profileID} [patch]
func updateUserProfileByIDHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, svc) {
			return
		}

		in, ok := readUserProfilePatch(w, r)
		if !ok {
			return
		}

		view, err := svc.UpdateUserProfileByID(r.Context(), chi.URLParam(r, "profileID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toAdminUserProfileResponse(view))
	}
}

// getFosterProfileHandler godoc
// @Summary Perfil foster del usuario autenticado
// @Description Devuelve el perfil foster con sus mascotas; si no existe lo crea.
// @Tags profiles
// @Produce json
// @Success 200 {object} fosterProfileResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /profile [get]
func getFosterProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}

		view, err := svc.FosterProfileFor(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toFosterProfileResponse(view))
	}
}

// updateFosterProfileHandler godoc
// @Summary Actualizar perfil foster
// @Description PUT exige userName, email y currentFosters; PATCH es parcial. currentFosters reemplaza la lista completa.
// @Tags profiles
// @Accept json
// @Produce json
// @Param payload body fosterProfileResponse true "Perfil foster"
// @Success 200 {object} fosterProfileResponse
// @Failure 400 {object} httpx.ErrorResponse "errores por campo (p.ej. currentFosters[0].name)"
// @Failure 401 {object} httpx.ErrorResponse
// @Router /profile [put]
func updateFosterProfileHandler(svc *Service, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}

		raw, ok := readObject(w, r)
		if !ok {
			return
		}

		v := validation.Violations{}
		in := FosterProfilePatch{
			UserName:     field[string](raw, "userName", v),
			Email:        field[string](raw, "email", v),
			Phone:        field[string](raw, "phone", v),
			Address:      field[string](raw, "address", v),
			Household:    field[string](raw, "household", v),
			ProfileImage: field[string](raw, "profileImage", v),
		}
		pets := field[[]fosterPetRequest](raw, "currentFosters", v)
		in.CurrentFosters = patch.Field[[]FosterPetInput]{Present: pets.Present, Null: pets.Null}
		if pets.HasValue() {
			in.CurrentFosters.Value = make([]FosterPetInput, 0, len(pets.Value))
			for _, p := range pets.Value {
				in.CurrentFosters.Value = append(in.CurrentFosters.Value, FosterPetInput{
					Name:  p.Name,
					Type:  p.Type,
					Breed: p.Breed,
					Age:   string(p.Age),
				})
			}
		}
		if !v.Empty() {
			httpx.JSONFields(w, v)
			return
		}

		view, err := svc.UpdateFosterProfile(r.Context(), uid, in, partial)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toFosterProfileResponse(view))
	}
}

func readUserProfilePatch(w http.ResponseWriter, r *http.Request) (UserProfilePatch, bool) {
	raw, ok := readObject(w, r)
	if !ok {
		return UserProfilePatch{}, false
	}

	v := validation.Violations{}
	in := UserProfilePatch{
		UserName:     field[string](raw, "userName", v),
		Email:        field[string](raw, "email", v),
		Phone:        field[string](raw, "phone", v),
		Address:      field[string](raw, "address", v),
		Household:    field[string](raw, "household", v),
		ProfileImage: field[string](raw, "profileImage", v),
		Favorites:    field[[]json.RawMessage](raw, "favorites", v),
		Preferences:  field[[]string](raw, "preferences", v),
	}
	if !v.Empty() {
		httpx.JSONFields(w, v)
		return UserProfilePatch{}, false
	}
	return in, true
}

func readObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProfileBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return nil, false
		}
		httpx.JSONError(w, http.StatusBadRequest, "invalid body")
		return nil, false
	}
	raw, err := patch.Object(body)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json")
		return nil, false
	}
	return raw, true
}

// field lee una key y registra un error de tipo en v.
func field[T any](raw map[string]json.RawMessage, key string, v validation.Violations) patch.Field[T] {
	f, err := patch.Get[T](raw, key)
	if err != nil {
		v.Add(key, "invalid type")
	}
	return f
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.UserID, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request, svc *Service) bool {
	uid, ok := callerID(w, r)
	if !ok {
		return false
	}
	if err := svc.RequireAdmin(r.Context(), uid); err != nil {
		writeError(w, err)
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
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "profile not found")
	case errors.Is(err, users.ErrNotFound):
		// claims válidos pero la identidad ya no existe
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized")
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func toUserProfileResponse(v UserProfileView) userProfileResponse {
	favs := v.Profile.Favorites
	if favs == nil {
		favs = []json.RawMessage{}
	}
	prefs := v.Profile.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	return userProfileResponse{
		UserName:     v.Username,
		Email:        v.Email,
		Phone:        v.Profile.Phone,
		Address:      v.Profile.Address,
		Household:    v.Profile.Household,
		Favorites:    favs,
		Preferences:  prefs,
		ProfileImage: imageRef(v.Profile.ProfileImage),
	}
}

func toAdminUserProfileResponse(v UserProfileView) adminUserProfileResponse {
	return adminUserProfileResponse{
		ID:                  v.Profile.ID,
		UserID:              v.Profile.UserID,
		userProfileResponse: toUserProfileResponse(v),
	}
}

func toFosterProfileResponse(v FosterProfileView) fosterProfileResponse {
	pets := make([]fosterPetResponse, 0, len(v.Profile.CurrentFosters))
	for _, p := range v.Profile.CurrentFosters {
		pets = append(pets, fosterPetResponse{
			ID:    p.ID,
			Name:  p.Name,
			Type:  p.Type,
			Breed: p.Breed,
			Age:   p.Age,
		})
	}
	return fosterProfileResponse{
		UserName:       v.Username,
		Email:          v.Email,
		Phone:          v.Profile.Phone,
		Address:        v.Profile.Address,
		Household:      v.Profile.Household,
		CurrentFosters: pets,
		ProfileImage:   imageRef(v.Profile.ProfileImage),
		FosteredCount:  v.Profile.FosteredCount,
		AdoptionCount:  v.Profile.AdoptionCount,
	}
}

func imageRef(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
