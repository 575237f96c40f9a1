package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-adoption/internal/domain/users"
)

type UsersRepo struct {
	s *Store
}

func NewUsersRepo(s *Store) *UsersRepo {
	return &UsersRepo{s: s}
}

const userColumns = `id, username, email, first_name, password_hash, is_staff, is_superuser, created_at, updated_at`

// CreateWithAccount inserta usuario y cuenta en la misma transacción.
func (r *UsersRepo) CreateWithAccount(ctx context.Context, u users.User, a users.Account) error {
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.s.exec(ctx, tx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (?,?,?,?,?,?,?,?,?)
		`,
			u.ID, u.Username, u.Email, u.FirstName, u.PasswordHash,
			u.IsStaff, u.IsSuperuser,
			toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
		); err != nil {
			return err
		}
		_, err := r.s.exec(ctx, tx, `
			INSERT INTO accounts (user_id, role, created_at, updated_at)
			VALUES (?,?,?,?)
		`, a.UserID, string(a.Role), toMillis(a.CreatedAt), toMillis(a.UpdatedAt))
		return err
	})
	if isUniqueViolation(err) {
		return users.ErrConflict
	}
	return err
}

func (r *UsersRepo) UpdateUser(ctx context.Context, u users.User) error {
	res, err := r.s.exec(ctx, r.s.db, `
		UPDATE users
		SET
			username = ?,
			email = ?,
			first_name = ?,
			password_hash = ?,
			is_staff = ?,
			is_superuser = ?,
			updated_at = ?
		WHERE id = ?
	`,
		u.Username, u.Email, u.FirstName, u.PasswordHash,
		u.IsStaff, u.IsSuperuser, toMillis(u.UpdatedAt),
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return users.ErrConflict
		}
		return err
	}
	if rowsAffected(res) == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, users.ErrNotFound
	}
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return scanUser(row)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	return scanUser(row)
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsersRepo) GetAccount(ctx context.Context, userID string) (users.Account, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(`
		SELECT user_id, role, created_at, updated_at
		FROM accounts
		WHERE user_id = ?
	`), userID)

	var (
		a                users.Account
		role             string
		created, updated int64
	)
	if err := row.Scan(&a.UserID, &role, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.Account{}, users.ErrNotFound
		}
		return users.Account{}, err
	}
	a.Role = users.Role(role)
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(updated)
	return a, nil
}

// SaveAccount hace upsert por user_id; created_at se conserva.
func (r *UsersRepo) SaveAccount(ctx context.Context, a users.Account) error {
	_, err := r.s.exec(ctx, r.s.db, `
		INSERT INTO accounts (user_id, role, created_at, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT (user_id) DO UPDATE SET
			role = excluded.role,
			updated_at = excluded.updated_at
	`, a.UserID, string(a.Role), toMillis(a.CreatedAt), toMillis(a.UpdatedAt))
	if err != nil && isForeignKeyViolation(err) {
		return users.ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var (
		u                users.User
		created, updated int64
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.PasswordHash,
		&u.IsStaff,
		&u.IsSuperuser,
		&created,
		&updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}
