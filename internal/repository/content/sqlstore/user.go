package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campusradio/server/internal/repository/content"
	"github.com/google/uuid"
)

type userRow struct {
	Id           string `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	CreatedAt    string `db:"created_at"`
}

// SetUser creates the user or replaces the password hash and role of an existing username.
func (s *Store) SetUser(ctx context.Context, params *content.SetUserParams) error {
	query := s.db.Rebind(`INSERT INTO users (id, username, password_hash, role, created_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (username) DO UPDATE SET
            password_hash = excluded.password_hash,
            role = excluded.role`)

	if _, err := s.db.ExecContext(ctx, query,
		uuid.NewString(), params.Username, params.PasswordHash, params.Role, s.now(),
	); err != nil {
		return fmt.Errorf("failed to set user: %w", err)
	}

	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (content.User, error) {
	var row userRow
	query := s.db.Rebind(`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`)
	if err := s.db.GetContext(ctx, &row, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.User{}, content.ErrUserNotFound
		}
		return content.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return content.User{
		Id:           row.Id,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		CreatedAt:    parseTime(row.CreatedAt),
	}, nil
}
