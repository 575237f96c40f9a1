package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-adoption/internal/domain/pets"
)

type PetsRepo struct {
	s *Store
}

func NewPetsRepo(s *Store) *PetsRepo {
	return &PetsRepo{s: s}
}

const petColumns = `id, name, breed, age, type, sex, status, image, weight, created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.s.exec(ctx, r.s.db, `
		INSERT INTO pets (`+petColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
	`,
		p.ID,
		p.Name,
		p.Breed,
		p.Age,
		string(p.Type),
		string(p.Sex),
		string(p.Status),
		p.Image,
		toNullFloat(p.Weight),
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.s.exec(ctx, r.s.db, `
		UPDATE pets
		SET
			name = ?,
			breed = ?,
			age = ?,
			type = ?,
			sex = ?,
			status = ?,
			image = ?,
			weight = ?,
			updated_at = ?
		WHERE id = ?
	`,
		p.Name,
		p.Breed,
		p.Age,
		string(p.Type),
		string(p.Sex),
		string(p.Status),
		p.Image,
		toNullFloat(p.Weight),
		toMillis(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(`SELECT `+petColumns+` FROM pets WHERE id = ?`), id)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE 1=1`
	args := make([]any, 0, 2)
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete borra la mascota; las solicitudes caen por ON DELETE CASCADE.
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM pets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p                pets.Pet
		typ, sex, status string
		weight           sql.NullFloat64
		created, updated int64
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Breed,
		&p.Age,
		&typ,
		&sex,
		&status,
		&p.Image,
		&weight,
		&created,
		&updated,
	); err != nil {
		return pets.Pet{}, err
	}
	p.Type = pets.Type(typ)
	p.Sex = pets.Sex(sex)
	p.Status = pets.Status(status)
	if weight.Valid {
		w := weight.Float64
		p.Weight = &w
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

// weight es opcional: nil se guarda como NULL.
func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
