package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"userapi/internal/model"
	"userapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Existence preconditions are expressed in the statement itself (ON CONFLICT,
// UPDATE ... RETURNING, DELETE rows affected) so each call is one atomic write.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, name, age, avatar`

// Create inserts a user row unless the id is already taken.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (id, name, age, avatar)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.Age, nullString(u.Avatar))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert user rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrAlreadyExists
	}
	return nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// List returns up to limit users. No ORDER BY: the result is a plain bounded scan.
func (r *UserPostgres) List(ctx context.Context, limit int) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users LIMIT $1`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan users: %w", err)
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return items, nil
}

// Update sets only the supplied columns on an existing row and returns the new row.
func (r *UserPostgres) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	sets, args := updateAssignments(p)
	if len(sets) == 0 {
		return nil, repository.ErrEmptyPatch
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	u, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete removes a user by ID. A missing row is reported as ErrNotFound.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ping checks database connectivity.
func (r *UserPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// updateAssignments builds "col = $n" fragments for the fields set in p, in a
// fixed column order, together with their positional arguments.
func updateAssignments(p model.UserPatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Age != nil {
		add("age", *p.Age)
	}
	if p.Avatar != nil {
		add("avatar", nullString(*p.Avatar))
	}
	return sets, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u      model.User
		avatar sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Age, &avatar); err != nil {
		return nil, err
	}
	u.Avatar = avatar.String
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
