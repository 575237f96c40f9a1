package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpx"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/validation"
	"pet-adoption/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta registro, login y cuentas. tokens puede ser nil (modo dev):
// en ese caso el login no devuelve token y se usa X-Debug-User-ID.
func RegisterRoutes(r chi.Router, svc *Service, tokens auth.TokenIssuer, log logger.Logger) {
	r.Post("/register", registerHandler(svc))
	r.Post("/login", loginHandler(svc, tokens, log))

	r.Route("/accounts", func(ar chi.Router) {
		ar.Get("/", listAccountsHandler(svc))
		ar.Get("/{userID}", getAccountHandler(svc))
		ar.Patch("/{userID}", updateAccountHandler(svc))
	})
}

type registerRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	Email     string  `json:"email"`
	Role      *string `json:"role"`
}

type registerResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	FirstName string     `json:"first_name"`
	Role      Role       `json:"role"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Role      Role   `json:"role"`
}

type updateAccountRequest struct {
	Role        *Role `json:"role"`
	IsStaff     *bool `json:"is_staff"`
	IsSuperuser *bool `json:"is_superuser"`
}

type accountResponse struct {
	userResponse
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Crea la identidad, su cuenta (rol pedido o `adopter`) y el perfil de usuario.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de registro; password mínimo 6 caracteres"
// @Success 201 {object} registerResponse
// @Failure 400 {object} httpx.ErrorResponse "errores por campo"
// @Router /register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}

		id, err := svc.Register(r.Context(), RegisterInput{
			Username:  req.Username,
			Password:  req.Password,
			FirstName: req.FirstName,
			Email:     req.Email,
			Role:      req.Role,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		httpx.JSON(w, http.StatusCreated, registerResponse{
			ID:        id.User.ID,
			Username:  id.User.Username,
			FirstName: id.User.FirstName,
			Email:     id.User.Email,
			Role:      id.Role(),
		})
	}
}

// loginHandler godoc
// @Summary Login
// @Description Valida credenciales y devuelve un token. Usuario inexistente y password incorrecta responden igual.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 400 {object} httpx.ErrorResponse "invalid credentials"
// @Router /login [post]
func loginHandler(svc *Service, tokens auth.TokenIssuer, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}

		id, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				httpx.JSONError(w, http.StatusBadRequest, "username and password required")
			case errors.Is(err, ErrInvalidCredentials):
				httpx.JSONError(w, http.StatusBadRequest, "invalid credentials")
			default:
				log.Error("login failed", map[string]any{"err": err})
				httpx.JSONError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		resp := loginResponse{
			ID:        id.User.ID,
			Username:  id.User.Username,
			FirstName: id.User.FirstName,
			Role:      id.Role(),
		}
		if tokens != nil {
			tok, err := tokens.Issue(r.Context(), auth.Claims{UserID: id.User.ID, Username: id.User.Username})
			if err != nil {
				log.Error("token issue failed", map[string]any{"err": err, "user_id": id.User.ID})
				httpx.JSONError(w, http.StatusInternalServerError, "internal error")
				return
			}
			resp.Token = tok.Value
			resp.ExpiresAt = &tok.ExpiresAt
		}

		httpx.JSON(w, http.StatusOK, resp)
	}
}

func listAccountsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := callerID(w, r); !ok {
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]userResponse, 0, len(items))
		for _, id := range items {
			out = append(out, toUserResponse(id))
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

func getAccountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := callerID(w, r); !ok {
			return
		}

		id, err := svc.Lookup(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toUserResponse(id))
	}
}

// updateAccountHandler godoc
// @Summary Actualizar cuenta (admin)
// @Description Cambia rol y flags staff/superuser. Si la identidad queda staff o superuser, el rol se fuerza a `admin`.
// @Tags users
// @Accept json
// @Produce json
// @Param userID path string true "ID del usuario"
// @Param payload body updateAccountRequest true "Campos a cambiar (omitidos = sin cambio)"
// @Success 200 {object} accountResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /accounts/{userID} [patch]
func updateAccountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}

		caller, err := svc.Lookup(r.Context(), uid)
		if err != nil || !caller.IsAdmin() {
			httpx.JSONError(w, http.StatusForbidden, "forbidden")
			return
		}

		var req updateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}

		id, err := svc.UpdateAccount(r.Context(), chi.URLParam(r, "userID"), UpdateAccountInput{
			Role:        req.Role,
			IsStaff:     req.IsStaff,
			IsSuperuser: req.IsSuperuser,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		httpx.JSON(w, http.StatusOK, accountResponse{
			userResponse: toUserResponse(id),
			Email:        id.User.Email,
			IsStaff:      id.User.IsStaff,
			IsSuperuser:  id.User.IsSuperuser,
		})
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.UserID, true
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
		httpx.JSONError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden")
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func toUserResponse(id Identity) userResponse {
	return userResponse{
		ID:        id.User.ID,
		Username:  id.User.Username,
		FirstName: id.User.FirstName,
		Role:      id.Role(),
	}
}
