package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pet-adoption/internal/domain/profiles"
)

type ProfilesRepo struct {
	s *Store
}

func NewProfilesRepo(s *Store) *ProfilesRepo {
	return &ProfilesRepo{s: s}
}

const userProfileColumns = `
	id, user_id,
	phone, address, household, profile_image,
	favorites, preferences,
	created_at, updated_at
`

func (r *ProfilesRepo) GetUserProfile(ctx context.Context, userID string) (profiles.UserProfile, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(
		`SELECT `+userProfileColumns+` FROM user_profiles WHERE user_id = ?`,
	), userID)
	return scanUserProfile(row)
}

func (r *ProfilesRepo) GetUserProfileByID(ctx context.Context, id string) (profiles.UserProfile, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(
		`SELECT `+userProfileColumns+` FROM user_profiles WHERE id = ?`,
	), id)
	return scanUserProfile(row)
}

func (r *ProfilesRepo) ListUserProfiles(ctx context.Context) ([]profiles.UserProfile, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+userProfileColumns+` FROM user_profiles ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profiles.UserProfile, 0)
	for rows.Next() {
		p, err := scanUserProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanUserProfile(row rowScanner) (profiles.UserProfile, error) {
	var (
		p                profiles.UserProfile
		favs, prefs      string
		created, updated int64
	)
	if err := row.Scan(
		&p.ID, &p.UserID,
		&p.Phone, &p.Address, &p.Household, &p.ProfileImage,
		&favs, &prefs,
		&created, &updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profiles.UserProfile{}, profiles.ErrNotFound
		}
		return profiles.UserProfile{}, err
	}

	if err := json.Unmarshal([]byte(favs), &p.Favorites); err != nil {
		return profiles.UserProfile{}, fmt.Errorf("decode favorites: %w", err)
	}
	if err := json.Unmarshal([]byte(prefs), &p.Preferences); err != nil {
		return profiles.UserProfile{}, fmt.Errorf("decode preferences: %w", err)
	}
	if p.Favorites == nil {
		p.Favorites = []json.RawMessage{}
	}
	if p.Preferences == nil {
		p.Preferences = []string{}
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

func (r *ProfilesRepo) CreateUserProfile(ctx context.Context, p profiles.UserProfile) error {
	favs, prefs, err := encodeLists(p)
	if err != nil {
		return err
	}
	_, err = r.s.exec(ctx, r.s.db, `
		INSERT INTO user_profiles (
			id, user_id,
			phone, address, household, profile_image,
			favorites, preferences,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)
	`,
		p.ID, p.UserID,
		p.Phone, p.Address, p.Household, p.ProfileImage,
		favs, prefs,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return profiles.ErrConflict
	}
	return err
}

func (r *ProfilesRepo) UpdateUserProfile(ctx context.Context, p profiles.UserProfile) error {
	favs, prefs, err := encodeLists(p)
	if err != nil {
		return err
	}
	res, err := r.s.exec(ctx, r.s.db, `
		UPDATE user_profiles
		SET
			phone = ?,
			address = ?,
			household = ?,
			profile_image = ?,
			favorites = ?,
			preferences = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`,
		p.Phone, p.Address, p.Household, p.ProfileImage,
		favs, prefs, toMillis(p.UpdatedAt),
		p.ID, p.UserID,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return profiles.ErrNotFound
	}
	return nil
}

func (r *ProfilesRepo) GetFosterProfile(ctx context.Context, userID string) (profiles.FosterProfile, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(`
		SELECT
			id, user_id,
			phone, address, household, profile_image,
			fostered_count, adoption_count,
			created_at, updated_at
		FROM foster_profiles
		WHERE user_id = ?
	`), userID)

	var (
		p                profiles.FosterProfile
		created, updated int64
	)
	if err := row.Scan(
		&p.ID, &p.UserID,
		&p.Phone, &p.Address, &p.Household, &p.ProfileImage,
		&p.FosteredCount, &p.AdoptionCount,
		&created, &updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profiles.FosterProfile{}, profiles.ErrNotFound
		}
		return profiles.FosterProfile{}, err
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)

	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(`
		SELECT id, profile_id, name, type, breed, age, position
		FROM foster_pets
		WHERE profile_id = ?
		ORDER BY position ASC
	`), p.ID)
	if err != nil {
		return profiles.FosterProfile{}, err
	}
	defer rows.Close()

	p.CurrentFosters = make([]profiles.FosterPet, 0)
	for rows.Next() {
		var (
			fp  profiles.FosterPet
			typ string
		)
		if err := rows.Scan(&fp.ID, &fp.ProfileID, &fp.Name, &typ, &fp.Breed, &fp.Age, &fp.Position); err != nil {
			return profiles.FosterProfile{}, err
		}
		fp.Type = profiles.FosterPetType(typ)
		p.CurrentFosters = append(p.CurrentFosters, fp)
	}
	if err := rows.Err(); err != nil {
		return profiles.FosterProfile{}, err
	}
	return p, nil
}

func (r *ProfilesRepo) CreateFosterProfile(ctx context.Context, p profiles.FosterProfile) error {
	_, err := r.s.exec(ctx, r.s.db, `
		INSERT INTO foster_profiles (
			id, user_id,
			phone, address, household, profile_image,
			fostered_count, adoption_count,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)
	`,
		p.ID, p.UserID,
		p.Phone, p.Address, p.Household, p.ProfileImage,
		p.FosteredCount, p.AdoptionCount,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return profiles.ErrConflict
	}
	return err
}

func (r *ProfilesRepo) UpdateFosterProfile(ctx context.Context, p profiles.FosterProfile) error {
	res, err := r.s.exec(ctx, r.s.db, `
		UPDATE foster_profiles
		SET
			phone = ?,
			address = ?,
			household = ?,
			profile_image = ?,
			fostered_count = ?,
			adoption_count = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`,
		p.Phone, p.Address, p.Household, p.ProfileImage,
		p.FosteredCount, p.AdoptionCount, toMillis(p.UpdatedAt),
		p.ID, p.UserID,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return profiles.ErrNotFound
	}
	return nil
}

// ReplaceFosterPets borra e inserta dentro de una única transacción.
func (r *ProfilesRepo) ReplaceFosterPets(ctx context.Context, profileID string, pets []profiles.FosterPet) error {
	return r.s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, r.s.rebind(`SELECT 1 FROM foster_profiles WHERE id = ?`), profileID).Scan(&exists)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return profiles.ErrNotFound
			}
			return err
		}

		if _, err := r.s.exec(ctx, tx, `DELETE FROM foster_pets WHERE profile_id = ?`, profileID); err != nil {
			return err
		}
		for _, fp := range pets {
			if _, err := r.s.exec(ctx, tx, `
				INSERT INTO foster_pets (id, profile_id, name, type, breed, age, position)
				VALUES (?,?,?,?,?,?,?)
			`, fp.ID, profileID, fp.Name, string(fp.Type), fp.Breed, fp.Age, fp.Position); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeLists(p profiles.UserProfile) (string, string, error) {
	favs := p.Favorites
	if favs == nil {
		favs = []json.RawMessage{}
	}
	prefs := p.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	fb, err := json.Marshal(favs)
	if err != nil {
		return "", "", fmt.Errorf("encode favorites: %w", err)
	}
	pb, err := json.Marshal(prefs)
	if err != nil {
		return "", "", fmt.Errorf("encode preferences: %w", err)
	}
	return string(fb), string(pb), nil
}
