package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-adoption/internal/domain/adoptions"
)

type AdoptionsRepo struct {
	s *Store
}

func NewAdoptionsRepo(s *Store) *AdoptionsRepo {
	return &AdoptionsRepo{s: s}
}

const requestColumns = `id, pet_id, requester_name, email, status, created_at, updated_at`

func (r *AdoptionsRepo) Create(ctx context.Context, req adoptions.Request) error {
	_, err := r.s.exec(ctx, r.s.db, `
		INSERT INTO adoption_requests (`+requestColumns+`)
		VALUES (?,?,?,?,?,?,?)
	`,
		req.ID, req.PetID, req.RequesterName, req.Email, string(req.Status),
		toMillis(req.CreatedAt), toMillis(req.UpdatedAt),
	)
	return err
}

func (r *AdoptionsRepo) Update(ctx context.Context, req adoptions.Request) error {
	res, err := r.s.exec(ctx, r.s.db, `
		UPDATE adoption_requests
		SET
			pet_id = ?,
			requester_name = ?,
			email = ?,
			status = ?,
			updated_at = ?
		WHERE id = ?
	`,
		req.PetID, req.RequesterName, req.Email, string(req.Status),
		toMillis(req.UpdatedAt), req.ID,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return adoptions.ErrNotFound
	}
	return nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(`SELECT `+requestColumns+` FROM adoption_requests WHERE id = ?`), id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	return req, err
}

func (r *AdoptionsRepo) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.Request, error) {
	where, args := requestWhere(f)
	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(`
		SELECT `+requestColumns+`
		FROM adoption_requests
		WHERE `+where+`
		ORDER BY created_at DESC, id DESC
	`), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoptions.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *AdoptionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM adoption_requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return adoptions.ErrNotFound
	}
	return nil
}

// DeleteMatching borra el conjunto filtrado en una sola sentencia y devuelve cuántas filas cayeron.
func (r *AdoptionsRepo) DeleteMatching(ctx context.Context, f adoptions.ListFilter) (int, error) {
	where, args := requestWhere(f)
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM adoption_requests WHERE `+where, args...)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

func requestWhere(f adoptions.ListFilter) (string, []any) {
	conds := []string{"1=1"}
	args := make([]any, 0, 3)
	if f.RequesterName != "" {
		conds = append(conds, "requester_name = ?")
		args = append(args, f.RequesterName)
	}
	if f.Email != "" {
		conds = append(conds, "email = ?")
		args = append(args, f.Email)
	}
	if f.PetID != "" {
		conds = append(conds, "pet_id = ?")
		args = append(args, f.PetID)
	}
	return strings.Join(conds, " AND "), args
}

func scanRequest(row rowScanner) (adoptions.Request, error) {
	var (
		req              adoptions.Request
		status           string
		created, updated int64
	)
	if err := row.Scan(
		&req.ID,
		&req.PetID,
		&req.RequesterName,
		&req.Email,
		&status,
		&created,
		&updated,
	); err != nil {
		return adoptions.Request{}, err
	}
	req.Status = adoptions.Status(status)
	req.CreatedAt = fromMillis(created)
	req.UpdatedAt = fromMillis(updated)
	return req, nil
}
