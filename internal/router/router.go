package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/adapters/media/disk"
	mem "pet-adoption/internal/adapters/storage/memory"
	"pet-adoption/internal/adapters/storage/sqlstore"
	_ "pet-adoption/internal/docs"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/profiles"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/media"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpx"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"
	mediaport "pet-adoption/internal/ports/media"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Tokens       auth.TokenIssuer  // nil => login sin token

	// Opcional: si viene, usa SQL (pgx o sqlite). Si no, in-memory.
	Store *sqlstore.Store

	// Media: si no viene Store de imágenes se arma uno en disco bajo MediaRoot.
	Media     mediaport.Store
	MediaRoot string
	MediaURL  string

	// Superuser opcional; se crea o promueve al armar el router.
	Superuser *Superuser

	// Hasher opcional (tests usan bcrypt.MinCost).
	Hasher users.PasswordHasher

	Logger logger.Logger
}

type Superuser struct {
	Username string
	Password string
	Email    string
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	mediaURL := opts.MediaURL
	if mediaURL == "" {
		mediaURL = "/media/"
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	// AuthContext va antes de RequestLog para que la línea de log lleve user_id
	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", healthHandler(opts.Store))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		userRepo     users.Repository
		profileRepo  profiles.Repository
		petRepo      pets.Repository
		adoptionRepo adoptions.Repository
	)

	if opts.Store != nil {
		userRepo = sqlstore.NewUsersRepo(opts.Store)
		profileRepo = sqlstore.NewProfilesRepo(opts.Store)
		petRepo = sqlstore.NewPetsRepo(opts.Store)
		adoptionRepo = sqlstore.NewAdoptionsRepo(opts.Store)
	} else {
		userRepo = mem.NewUserRepo()
		profileRepo = mem.NewProfileRepo()
		petRepo = mem.NewPetRepo()
		adoptionRepo = mem.NewAdoptionRepo()
	}

	// Imágenes
	imageStore := opts.Media
	if imageStore == nil && strings.TrimSpace(opts.MediaRoot) != "" {
		ds, err := disk.New(opts.MediaRoot, mediaURL)
		if err != nil {
			return nil, err
		}
		imageStore = ds
	}
	if root := strings.TrimSpace(opts.MediaRoot); root != "" && strings.HasPrefix(mediaURL, "/") {
		prefix := strings.TrimSuffix(mediaURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(root))))
	}
	ingestor := media.NewIngestor(imageStore)

	// Services por módulo
	usersSvc := users.NewService(userRepo, opts.Hasher, log.With(map[string]any{"module": "users"}))
	profilesSvc := profiles.NewService(profileRepo, usersSvc, ingestor, log.With(map[string]any{"module": "profiles"}))
	petsSvc := pets.NewService(petRepo, ingestor, log.With(map[string]any{"module": "pets"}))
	adoptionsSvc := adoptions.NewService(adoptionRepo, petsSvc, log.With(map[string]any{"module": "adoptions"}))

	// Dependencias cruzadas (evitan ciclos de import)
	usersSvc.SetProfileProvisioner(profilesSvc)
	if opts.Store == nil {
		// en SQL las solicitudes caen por ON DELETE CASCADE en el mismo DELETE
		petsSvc.SetRequestPurger(adoptionsSvc)
	}

	if su := opts.Superuser; su != nil && su.Username != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := usersSvc.EnsureSuperuser(ctx, su.Username, su.Password, su.Email); err != nil {
			return nil, fmt.Errorf("bootstrap superuser: %w", err)
		}
		log.Info("superuser ready", map[string]any{"username": su.Username})
	}

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, opts.Tokens, log)
	profiles.RegisterRoutes(r, profilesSvc)
	pets.RegisterRoutes(r, petsSvc)
	adoptions.RegisterRoutes(r, adoptionsSvc)

	return r, nil
}

func healthHandler(store *sqlstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
