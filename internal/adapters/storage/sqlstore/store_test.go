package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/profiles"
	"pet-adoption/internal/domain/users"
)

var testNow = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func seedUser(t *testing.T, s *Store, id, username string) {
	t.Helper()
	u := users.User{ID: id, Username: username, PasswordHash: "x", CreatedAt: testNow, UpdatedAt: testNow}
	a := users.Account{UserID: id, Role: users.RoleAdopter, CreatedAt: testNow, UpdatedAt: testNow}
	if err := NewUsersRepo(s).CreateWithAccount(context.Background(), u, a); err != nil {
		t.Fatalf("CreateWithAccount: %v", err)
	}
}

// -------------------------
// helpers
// -------------------------

func TestRebind(t *testing.T) {
	pg := &Store{dialect: DialectPostgres}
	if got := pg.rebind(`SELECT 1 WHERE a = ? AND b = ?`); got != `SELECT 1 WHERE a = $1 AND b = $2` {
		t.Fatalf("unexpected rebind: %s", got)
	}
	lite := &Store{dialect: DialectSQLite}
	if got := lite.rebind(`a = ?`); got != `a = ?` {
		t.Fatalf("sqlite query must stay untouched, got %s", got)
	}
}

func TestSplitStatements_SkipsComments(t *testing.T) {
	got := splitStatements("-- tabla\nCREATE TABLE a (x INT);\n\n-- otra\nCREATE TABLE b (y INT);\n")
	if len(got) != 2 || got[0] != "CREATE TABLE a (x INT)" {
		t.Fatalf("unexpected statements: %#v", got)
	}
}

func TestOpen_Validation(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := Open(DialectSQLite, " "); err == nil {
		t.Fatalf("expected dsn required error")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

// -------------------------
// users
// -------------------------

func TestUsersRepo_CreateAndConflict(t *testing.T) {
	s := openTestStore(t)
	repo := NewUsersRepo(s)
	ctx := context.Background()

	seedUser(t, s, "u-1", "alice")

	u, err := repo.GetByUsername(ctx, "alice")
	if err != nil || u.ID != "u-1" || !u.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected user %#v (%v)", u, err)
	}

	dup := users.User{ID: "u-2", Username: "alice", PasswordHash: "x", CreatedAt: testNow, UpdatedAt: testNow}
	err = repo.CreateWithAccount(ctx, dup, users.Account{UserID: "u-2", Role: users.RoleAdopter})
	if !errors.Is(err, users.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// la transacción no deja cuenta huérfana
	if _, err := repo.GetAccount(ctx, "u-2"); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected no account for failed insert, got %v", err)
	}
}

func TestUsersRepo_SaveAccountUpsert(t *testing.T) {
	s := openTestStore(t)
	repo := NewUsersRepo(s)
	ctx := context.Background()

	seedUser(t, s, "u-1", "alice")

	later := testNow.Add(time.Hour)
	if err := repo.SaveAccount(ctx, users.Account{UserID: "u-1", Role: users.RoleAdmin, CreatedAt: later, UpdatedAt: later}); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	a, err := repo.GetAccount(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if a.Role != users.RoleAdmin || !a.CreatedAt.Equal(testNow) || !a.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected account after upsert: %#v", a)
	}

	if err := repo.SaveAccount(ctx, users.Account{UserID: "ghost", Role: users.RoleAdmin}); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestUsersRepo_UpdateUser(t *testing.T) {
	s := openTestStore(t)
	repo := NewUsersRepo(s)
	ctx := context.Background()

	seedUser(t, s, "u-1", "alice")
	seedUser(t, s, "u-2", "bob")

	u, _ := repo.GetByID(ctx, "u-1")
	u.IsStaff = true
	u.Email = "alice@example.com"
	if err := repo.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, _ := repo.GetByID(ctx, "u-1")
	if !got.IsStaff || got.Email != "alice@example.com" {
		t.Fatalf("update not persisted: %#v", got)
	}

	u.Username = "bob"
	if err := repo.UpdateUser(ctx, u); !errors.Is(err, users.ErrConflict) {
		t.Fatalf("expected ErrConflict on taken username, got %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 users, got %d (%v)", len(list), err)
	}
}

// -------------------------
// profiles
// -------------------------

func TestProfilesRepo_ListAndGetByID(t *testing.T) {
	s := openTestStore(t)
	repo := NewProfilesRepo(s)
	ctx := context.Background()

	for i, uid := range []string{"u-1", "u-2"} {
		seedUser(t, s, uid, "user"+uid)
		ts := testNow.Add(time.Duration(i) * time.Minute)
		if err := repo.CreateUserProfile(ctx, profiles.UserProfile{
			ID: "p-" + uid, UserID: uid, Preferences: []string{"", "cats"}, CreatedAt: ts, UpdatedAt: ts,
		}); err != nil {
			t.Fatalf("CreateUserProfile %s: %v", uid, err)
		}
	}

	items, err := repo.ListUserProfiles(ctx)
	if err != nil {
		t.Fatalf("ListUserProfiles: %v", err)
	}
	if len(items) != 2 || items[0].UserID != "u-1" || items[1].UserID != "u-2" {
		t.Fatalf("expected profiles by creation, got %#v", items)
	}

	got, err := repo.GetUserProfileByID(ctx, "p-u-2")
	if err != nil {
		t.Fatalf("GetUserProfileByID: %v", err)
	}
	if got.UserID != "u-2" || len(got.Preferences) != 2 || got.Preferences[0] != "" {
		t.Fatalf("unexpected profile: %#v", got)
	}
	if _, err := repo.GetUserProfileByID(ctx, "nope"); !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfilesRepo_UserProfile(t *testing.T) {
	s := openTestStore(t)
	repo := NewProfilesRepo(s)
	ctx := context.Background()

	seedUser(t, s, "u-1", "alice")

	p := profiles.UserProfile{
		ID:          "p-1",
		UserID:      "u-1",
		Favorites:   []json.RawMessage{json.RawMessage(`{"pet":{"id":1}}`)},
		Preferences: []string{"dogs"},
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	if err := repo.CreateUserProfile(ctx, p); err != nil {
		t.Fatalf("CreateUserProfile: %v", err)
	}
	p2 := p
	p2.ID = "p-2"
	if err := repo.CreateUserProfile(ctx, p2); !errors.Is(err, profiles.ErrConflict) {
		t.Fatalf("expected ErrConflict for second profile, got %v", err)
	}

	got, err := repo.GetUserProfile(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if len(got.Favorites) != 1 || string(got.Favorites[0]) != `{"pet":{"id":1}}` || got.Preferences[0] != "dogs" {
		t.Fatalf("unexpected lists: %#v", got)
	}

	got.Phone = "555-1234"
	got.Favorites = nil
	if err := repo.UpdateUserProfile(ctx, got); err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}
	again, _ := repo.GetUserProfile(ctx, "u-1")
	if again.Phone != "555-1234" || again.Favorites == nil || len(again.Favorites) != 0 {
		t.Fatalf("unexpected profile after update: %#v", again)
	}

	if _, err := repo.GetUserProfile(ctx, "nobody"); !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfilesRepo_ReplaceFosterPets(t *testing.T) {
	s := openTestStore(t)
	repo := NewProfilesRepo(s)
	ctx := context.Background()

	seedUser(t, s, "u-1", "alice")

	fp := profiles.FosterProfile{ID: "f-1", UserID: "u-1", CreatedAt: testNow, UpdatedAt: testNow}
	if err := repo.CreateFosterProfile(ctx, fp); err != nil {
		t.Fatalf("CreateFosterProfile: %v", err)
	}

	first := []profiles.FosterPet{
		{ID: "a", Name: "Rex", Type: profiles.FosterPetDog, Position: 0},
		{ID: "b", Name: "Tom", Type: profiles.FosterPetCat, Position: 1},
	}
	if err := repo.ReplaceFosterPets(ctx, "f-1", first); err != nil {
		t.Fatalf("ReplaceFosterPets: %v", err)
	}
	second := []profiles.FosterPet{
		{ID: "d", Name: "Kiwi", Type: profiles.FosterPetBird, Position: 1},
		{ID: "c", Name: "Luna", Type: profiles.FosterPetCat, Age: "2 Years", Position: 0},
	}
	if err := repo.ReplaceFosterPets(ctx, "f-1", second); err != nil {
		t.Fatalf("second ReplaceFosterPets: %v", err)
	}

	got, err := repo.GetFosterProfile(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetFosterProfile: %v", err)
	}
	if len(got.CurrentFosters) != 2 || got.CurrentFosters[0].Name != "Luna" || got.CurrentFosters[1].Name != "Kiwi" {
		t.Fatalf("expected replaced list ordered by position, got %#v", got.CurrentFosters)
	}

	// ids duplicados: la transacción no deja la lista a medias
	dup := []profiles.FosterPet{{ID: "x", Name: "A", Type: profiles.FosterPetDog}, {ID: "x", Name: "B", Type: profiles.FosterPetDog, Position: 1}}
	if err := repo.ReplaceFosterPets(ctx, "f-1", dup); err == nil {
		t.Fatalf("expected error on duplicate ids")
	}
	kept, _ := repo.GetFosterProfile(ctx, "u-1")
	if len(kept.CurrentFosters) != 2 || kept.CurrentFosters[0].ID != "c" {
		t.Fatalf("expected previous list intact, got %#v", kept.CurrentFosters)
	}

	if err := repo.ReplaceFosterPets(ctx, "missing", nil); !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown profile, got %v", err)
	}
}

// -------------------------
// pets + adoptions
// -------------------------

func TestPetsAndAdoptions(t *testing.T) {
	s := openTestStore(t)
	petRepo := NewPetsRepo(s)
	reqRepo := NewAdoptionsRepo(s)
	ctx := context.Background()

	w := 7.5
	for i, p := range []pets.Pet{
		{ID: "p-1", Name: "Rex", Breed: "Mixed", Age: 3, Type: pets.TypeDog, Sex: pets.SexMale, Status: pets.StatusAvailable, Weight: &w},
		{ID: "p-2", Name: "Tom", Breed: "Siamese", Age: 2, Type: pets.TypeCat, Sex: pets.SexUnknown, Status: pets.StatusAvailable},
	} {
		p.CreatedAt = testNow.Add(time.Duration(i) * time.Minute)
		p.UpdatedAt = p.CreatedAt
		if err := petRepo.Create(ctx, p); err != nil {
			t.Fatalf("Create pet: %v", err)
		}
	}

	all, err := petRepo.List(ctx, pets.ListFilter{})
	if err != nil || len(all) != 2 || all[0].ID != "p-2" {
		t.Fatalf("expected newest first, got %#v (%v)", all, err)
	}
	dogs, _ := petRepo.List(ctx, pets.ListFilter{Type: pets.TypeDog})
	if len(dogs) != 1 || dogs[0].Weight == nil || *dogs[0].Weight != 7.5 {
		t.Fatalf("unexpected dogs: %#v", dogs)
	}

	for i, petID := range []string{"p-1", "p-1", "p-2"} {
		req := adoptions.Request{
			ID:            "r-" + string(rune('a'+i)),
			PetID:         petID,
			RequesterName: "Alice",
			Status:        adoptions.StatusPending,
			CreatedAt:     testNow,
			UpdatedAt:     testNow,
		}
		if err := reqRepo.Create(ctx, req); err != nil {
			t.Fatalf("Create request: %v", err)
		}
	}

	// cascade: borrar la mascota borra sus solicitudes
	if err := petRepo.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("Delete pet: %v", err)
	}
	left, _ := reqRepo.List(ctx, adoptions.ListFilter{})
	if len(left) != 1 || left[0].PetID != "p-2" {
		t.Fatalf("expected cascade to remove p-1 requests, got %#v", left)
	}
	if err := petRepo.Delete(ctx, "p-1"); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	n, err := reqRepo.DeleteMatching(ctx, adoptions.ListFilter{RequesterName: "Bob"})
	if err != nil || n != 0 {
		t.Fatalf("expected 0 deleted for Bob, got %d (%v)", n, err)
	}
	n, err = reqRepo.DeleteMatching(ctx, adoptions.ListFilter{})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 deleted, got %d (%v)", n, err)
	}
}

func TestAdoptionsRepo_UpdateStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := pets.Pet{ID: "p-1", Name: "Rex", Breed: "Mixed", Type: pets.TypeDog, Sex: pets.SexUnknown, Status: pets.StatusAvailable, CreatedAt: testNow, UpdatedAt: testNow}
	if err := NewPetsRepo(s).Create(ctx, p); err != nil {
		t.Fatalf("Create pet: %v", err)
	}

	repo := NewAdoptionsRepo(s)
	req := adoptions.Request{ID: "r-1", PetID: "p-1", RequesterName: "Alice", Email: "a@example.com", Status: adoptions.StatusPending, CreatedAt: testNow, UpdatedAt: testNow}
	if err := repo.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	req.Status = adoptions.StatusApproved
	if err := repo.Update(ctx, req); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByID(ctx, "r-1")
	if err != nil || got.Status != adoptions.StatusApproved || got.Email != "a@example.com" {
		t.Fatalf("unexpected request %#v (%v)", got, err)
	}

	if _, err := repo.GetByID(ctx, "r-404"); !errors.Is(err, adoptions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
