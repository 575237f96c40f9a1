package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/profiles"
	"pet-adoption/internal/domain/users"
)

var base = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func TestUserRepo_UniqueUsername(t *testing.T) {
	repo := NewUserRepo()
	ctx := context.Background()

	alice := users.User{ID: "u-1", Username: "alice", CreatedAt: base}
	if err := repo.CreateWithAccount(ctx, alice, users.Account{UserID: "u-1", Role: users.RoleAdopter}); err != nil {
		t.Fatalf("CreateWithAccount: %v", err)
	}
	dup := users.User{ID: "u-2", Username: "alice", CreatedAt: base}
	if err := repo.CreateWithAccount(ctx, dup, users.Account{UserID: "u-2"}); !errors.Is(err, users.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := repo.GetAccount(ctx, "u-2"); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected no account for rejected user")
	}

	bob := users.User{ID: "u-3", Username: "bob", CreatedAt: base.Add(time.Minute)}
	if err := repo.CreateWithAccount(ctx, bob, users.Account{UserID: "u-3"}); err != nil {
		t.Fatalf("CreateWithAccount bob: %v", err)
	}
	bob.Username = "alice"
	if err := repo.UpdateUser(ctx, bob); !errors.Is(err, users.ErrConflict) {
		t.Fatalf("expected rename conflict, got %v", err)
	}
	bob.Username = "robert"
	if err := repo.UpdateUser(ctx, bob); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "bob"); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("old username must be released")
	}

	list, _ := repo.List(ctx)
	if len(list) != 2 || list[0].Username != "alice" {
		t.Fatalf("expected creation order, got %#v", list)
	}
}

func TestProfileRepo_OnePerUserAndReplace(t *testing.T) {
	repo := NewProfileRepo()
	ctx := context.Background()

	if err := repo.CreateFosterProfile(ctx, profiles.FosterProfile{ID: "f-1", UserID: "u-1"}); err != nil {
		t.Fatalf("CreateFosterProfile: %v", err)
	}
	if err := repo.CreateFosterProfile(ctx, profiles.FosterProfile{ID: "f-2", UserID: "u-1"}); !errors.Is(err, profiles.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	fosters := []profiles.FosterPet{
		{ID: "b", Name: "Tom", Position: 1},
		{ID: "a", Name: "Rex", Position: 0},
	}
	if err := repo.ReplaceFosterPets(ctx, "f-1", fosters); err != nil {
		t.Fatalf("ReplaceFosterPets: %v", err)
	}
	if err := repo.ReplaceFosterPets(ctx, "f-1", []profiles.FosterPet{{ID: "x"}, {ID: "x"}}); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	got, err := repo.GetFosterProfile(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetFosterProfile: %v", err)
	}
	if len(got.CurrentFosters) != 2 || got.CurrentFosters[0].Name != "Rex" || got.CurrentFosters[0].ProfileID != "f-1" {
		t.Fatalf("unexpected pets: %#v", got.CurrentFosters)
	}
}

func TestPetAndAdoptionRepos(t *testing.T) {
	petRepo := NewPetRepo()
	reqRepo := NewAdoptionRepo()
	ctx := context.Background()

	for i, id := range []string{"p-1", "p-2"} {
		p := pets.Pet{ID: id, Type: pets.TypeDog, Status: pets.StatusAvailable, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := petRepo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	list, _ := petRepo.List(ctx, pets.ListFilter{Status: pets.StatusAvailable})
	if len(list) != 2 || list[0].ID != "p-2" {
		t.Fatalf("expected newest first, got %#v", list)
	}

	for _, id := range []string{"r-1", "r-2", "r-3"} {
		if err := reqRepo.Create(ctx, adoptions.Request{ID: id, PetID: "p-1", RequesterName: "Alice"}); err != nil {
			t.Fatalf("Create request: %v", err)
		}
	}
	n, err := reqRepo.DeleteMatching(ctx, adoptions.ListFilter{PetID: "p-1"})
	if err != nil || n != 3 {
		t.Fatalf("expected 3 deleted, got %d (%v)", n, err)
	}
	if err := reqRepo.Delete(ctx, "r-1"); !errors.Is(err, adoptions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
