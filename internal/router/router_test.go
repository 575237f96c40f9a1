package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pet-adoption/internal/adapters/auth/jwtauth"
	"pet-adoption/internal/adapters/storage/sqlstore"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/router"

	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T, opts router.Options) *httptest.Server {
	t.Helper()

	mgr, err := jwtauth.NewManager(jwtauth.Config{Secret: "test-secret", Issuer: "test", TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	opts.AuthVerifier = mgr
	opts.Tokens = mgr
	opts.Hasher = users.BcryptHasher{Cost: bcrypt.MinCost}
	if opts.MediaRoot == "" {
		opts.MediaRoot = t.TempDir()
	}

	h, err := router.NewRouter(opts)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_RegisterLoginProfiles(t *testing.T) {
	ts := newServer(t, router.Options{})

	// 1) Registro con rol por defecto
	{
		st, body := doReq(t, ts.URL, "POST", "/register", "", map[string]any{
			"username": "alice",
			"password": "secret1",
			"email":    "alice@example.com",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 on register, got %d body=%s", st, body)
		}
		var out map[string]any
		mustJSON(t, body, &out)
		if out["role"] != "adopter" {
			t.Fatalf("expected adopter role, got %v", out["role"])
		}
	}

	// 2) Password corta => error por campo
	{
		st, body := doReq(t, ts.URL, "POST", "/register", "", map[string]any{"username": "bob", "password": "123"})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 on short password, got %d", st)
		}
		var out struct {
			Fields map[string][]string `json:"fields"`
		}
		mustJSON(t, body, &out)
		if len(out.Fields["password"]) == 0 {
			t.Fatalf("expected password field error, got %s", body)
		}
	}

	token := login(t, ts.URL, "alice", "secret1")

	// 3) El perfil de usuario ya existe desde el registro
	{
		st, body := doReq(t, ts.URL, "GET", "/user-profile", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on user-profile, got %d body=%s", st, body)
		}
		var out map[string]any
		mustJSON(t, body, &out)
		if out["userName"] != "alice" || out["profileImage"] != nil {
			t.Fatalf("unexpected profile: %s", body)
		}
		if favs, ok := out["favorites"].([]any); !ok || len(favs) != 0 {
			t.Fatalf("expected empty favorites list, got %v", out["favorites"])
		}
	}

	// 4) PATCH parcial: favorites se reemplaza, phone se actualiza
	{
		st, body := doReq(t, ts.URL, "PATCH", "/user-profile", token, map[string]any{
			"phone":     "555-1234",
			"favorites": []any{map[string]any{"pet": map[string]any{"id": 1}}},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 on PATCH user-profile, got %d body=%s", st, body)
		}
		var out map[string]any
		mustJSON(t, body, &out)
		if out["phone"] != "555-1234" || len(out["favorites"].([]any)) != 1 {
			t.Fatalf("unexpected profile after PATCH: %s", body)
		}
	}

	// 5) Perfil foster: se crea al primer GET, PUT reemplaza la lista
	{
		st, body := doReq(t, ts.URL, "GET", "/profile", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on GET /profile, got %d body=%s", st, body)
		}

		put := map[string]any{
			"userName": "alice",
			"email":    "alice@example.com",
			"currentFosters": []any{
				map[string]any{"name": "Rex", "type": "Dog", "breed": "Mixed", "age": "2 Years"},
				map[string]any{"name": "Tweety", "type": "bird", "breed": "Canary", "age": 1},
			},
		}
		var ids [2][]any
		for i := 0; i < 2; i++ {
			st, body = doReq(t, ts.URL, "PUT", "/profile", token, put)
			if st != http.StatusOK {
				t.Fatalf("expected 200 on PUT /profile #%d, got %d body=%s", i, st, body)
			}
			var out struct {
				CurrentFosters []map[string]any `json:"currentFosters"`
			}
			mustJSON(t, body, &out)
			if len(out.CurrentFosters) != 2 || out.CurrentFosters[1]["type"] != "Bird" || out.CurrentFosters[1]["age"] != "1" {
				t.Fatalf("expected 2 fosters after PUT #%d, got %s", i, body)
			}
			for _, fp := range out.CurrentFosters {
				ids[i] = append(ids[i], fp["id"])
			}
		}
		for _, first := range ids[0] {
			for _, second := range ids[1] {
				if first == second {
					t.Fatalf("expected new foster ids on second PUT, %v reused", first)
				}
			}
		}
	}

	// 6) Sin token => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/user-profile", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without token, got %d", st)
		}
	}
}

func TestHTTP_Login_UniformError(t *testing.T) {
	ts := newServer(t, router.Options{})
	register(t, ts.URL, "alice", "secret1")

	stUnknown, bodyUnknown := doReq(t, ts.URL, "POST", "/login", "", map[string]any{"username": "ghost", "password": "secret1"})
	stWrong, bodyWrong := doReq(t, ts.URL, "POST", "/login", "", map[string]any{"username": "alice", "password": "nope!!"})
	if stUnknown != http.StatusBadRequest || stWrong != http.StatusBadRequest {
		t.Fatalf("expected 400/400, got %d/%d", stUnknown, stWrong)
	}
	if !bytes.Equal(bodyUnknown, bodyWrong) {
		t.Fatalf("expected identical bodies, got %s vs %s", bodyUnknown, bodyWrong)
	}
}

func TestHTTP_PetsAndApplications(t *testing.T) {
	ts := newServer(t, router.Options{})
	register(t, ts.URL, "poster", "secret1")
	token := login(t, ts.URL, "poster", "secret1")

	// Escritura sin auth => 401
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets", "", map[string]any{"name": "Rex"})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 creating pet without token, got %d", st)
		}
	}

	petID := createPet(t, ts.URL, token, map[string]any{
		"name":  "Rex",
		"breed": "Mixed",
		"age":   3,
		"type":  "Dog",
	})

	// Lectura pública
	{
		st, body := doReq(t, ts.URL, "GET", "/pets?status=Available", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing pets, got %d", st)
		}
		var out []map[string]any
		mustJSON(t, body, &out)
		if len(out) != 1 || out[0]["sex"] != "UNKNOWN" {
			t.Fatalf("unexpected list: %s", body)
		}
	}

	// Cinco solicitudes y borrado masivo
	for i := 0; i < 5; i++ {
		st, body := doReq(t, ts.URL, "POST", "/applications", "", map[string]any{
			"pet":            petID,
			"requester_name": "Alice",
			"email":          "alice@example.com",
			"status":         "Approved",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating application, got %d body=%s", st, body)
		}
		var out map[string]any
		mustJSON(t, body, &out)
		if out["status"] != "Pending" || out["pet_name"] != "Rex" {
			t.Fatalf("unexpected application: %s", body)
		}
	}
	{
		st, body := doReq(t, ts.URL, "DELETE", "/applications", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on bulk delete, got %d", st)
		}
		var out map[string]any
		mustJSON(t, body, &out)
		if out["deleted"] != float64(5) || out["message"] != "Successfully deleted 5 records." {
			t.Fatalf("unexpected bulk delete body: %s", body)
		}
		st, body = doReq(t, ts.URL, "GET", "/applications", "", nil)
		if st != http.StatusOK || string(bytes.TrimSpace(body)) != "[]" {
			t.Fatalf("expected empty list, got %d %s", st, body)
		}
	}

	// Mascota inexistente => error por campo
	{
		st, body := doReq(t, ts.URL, "POST", "/applications", "", map[string]any{"pet": "missing", "requester_name": "Bob"})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown pet, got %d body=%s", st, body)
		}
	}

	// Borrar la mascota
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/pets/"+petID, token, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 deleting pet, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/pets/"+petID, "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}
}

func TestHTTP_PetMultipartImage(t *testing.T) {
	ts := newServer(t, router.Options{MediaRoot: t.TempDir(), MediaURL: "/media/"})
	register(t, ts.URL, "poster", "secret1")
	token := login(t, ts.URL, "poster", "secret1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"name": "Tom", "breed": "Siamese", "age": "2", "type": "Cat", "weight": ""} {
		_ = mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("image", "tom.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte("fake-png-bytes"))
	_ = mw.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/pets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Token "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 on multipart create, got %d body=%s", res.StatusCode, body)
	}

	var out map[string]any
	mustJSON(t, body, &out)
	img, _ := out["image"].(string)
	if filepath.Ext(img) != ".png" || out["weight"] != nil {
		t.Fatalf("unexpected pet: %s", body)
	}

	st, served := doReq(t, ts.URL, "GET", img, "", nil)
	if st != http.StatusOK || string(served) != "fake-png-bytes" {
		t.Fatalf("expected stored image served, got %d %q", st, served)
	}
}

func TestHTTP_AdminPromotion_SQLite(t *testing.T) {
	store, err := sqlstore.Open(sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(t.Context()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	ts := newServer(t, router.Options{
		Store:     store,
		Superuser: &router.Superuser{Username: "root", Password: "rootpass", Email: "root@example.com"},
	})

	bobID := register(t, ts.URL, "bob", "secret1")
	register(t, ts.URL, "carol", "secret1")
	adminToken := login(t, ts.URL, "root", "rootpass")
	bobToken := login(t, ts.URL, "bob", "secret1")
	carolToken := login(t, ts.URL, "carol", "secret1")

	// Un no-admin no puede cambiar cuentas
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/accounts/"+bobID, bobToken, map[string]any{"role": "poster"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non-admin, got %d", st)
		}
	}

	// staff => admin, aunque se pida otro rol
	{
		st, body := doReq(t, ts.URL, "PATCH", "/accounts/"+bobID, adminToken, map[string]any{"is_staff": true, "role": "foster"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 promoting, got %d body=%s", st, body)
		}
		var out map[string]any
		mustJSON(t, body, &out)
		if out["role"] != "admin" || out["is_staff"] != true {
			t.Fatalf("expected admin after promotion, got %s", body)
		}
	}

	// El perfil de bob existe y es único aunque se pida varias veces
	for i := 0; i < 3; i++ {
		st, body := doReq(t, ts.URL, "GET", "/user-profile", bobToken, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on user-profile #%d, got %d body=%s", i, st, body)
		}
	}

	// Colección de perfiles: solo admin
	{
		st, _ := doReq(t, ts.URL, "GET", "/user-profiles", carolToken, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 listing profiles as non-admin, got %d", st)
		}

		st, body := doReq(t, ts.URL, "GET", "/user-profiles", adminToken, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing profiles, got %d body=%s", st, body)
		}
		var list []map[string]any
		mustJSON(t, body, &list)
		var carolProfile string
		for _, p := range list {
			if p["userName"] == "carol" {
				carolProfile, _ = p["id"].(string)
			}
		}
		if len(list) != 3 || carolProfile == "" {
			t.Fatalf("expected root, bob and carol profiles, got %s", body)
		}

		st, body = doReq(t, ts.URL, "PATCH", "/user-profiles/"+carolProfile, adminToken, map[string]any{"household": "Apartment"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patching carol's profile, got %d body=%s", st, body)
		}
		st, body = doReq(t, ts.URL, "GET", "/user-profile", carolToken, nil)
		var own map[string]any
		mustJSON(t, body, &own)
		if st != http.StatusOK || own["household"] != "Apartment" {
			t.Fatalf("expected carol to see admin change, got %d %s", st, body)
		}

		st, _ = doReq(t, ts.URL, "GET", "/user-profiles/missing", adminToken, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown profile, got %d", st)
		}
	}

	{
		st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected healthy, got %d %s", st, body)
		}
	}
}

func TestHTTP_RequestLogCarriesUserID(t *testing.T) {
	out := &syncBuffer{}
	ts := newServer(t, router.Options{
		Logger: logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Out: out}),
	})
	uid := register(t, ts.URL, "dave", "secret1")
	token := login(t, ts.URL, "dave", "secret1")

	st, _ := doReq(t, ts.URL, "GET", "/user-profile", token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}

	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, `"path":"/user-profile"`) && strings.Contains(line, `"user_id":"`+uid+`"`) {
			return
		}
	}
	t.Fatalf("expected request log line with user_id %s, got %s", uid, out.String())
}

// -------------------------
// helpers
// -------------------------

func register(t *testing.T, baseURL, username, password string) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/register", "", map[string]any{"username": username, "password": password})
	if st != http.StatusCreated {
		t.Fatalf("register %s: got %d body=%s", username, st, body)
	}
	var out struct {
		ID string `json:"id"`
	}
	mustJSON(t, body, &out)
	return out.ID
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/login", "", map[string]any{"username": username, "password": password})
	if st != http.StatusOK {
		t.Fatalf("login %s: got %d body=%s", username, st, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	mustJSON(t, body, &out)
	if out.Token == "" {
		t.Fatalf("expected token in login response")
	}
	return out.Token
}

func createPet(t *testing.T, baseURL, token string, payload map[string]any) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/pets", token, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 creating pet, got %d body=%s", st, body)
	}
	var out struct {
		ID string `json:"id"`
	}
	mustJSON(t, body, &out)
	if out.ID == "" {
		t.Fatalf("missing pet id")
	}
	return out.ID
}

func doReq(t *testing.T, baseURL, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}

func mustJSON(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

// syncBuffer: el servidor escribe logs desde otra goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
