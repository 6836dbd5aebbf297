package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/bistro/internal/models"
)

const userColumns = `id, email, display_name, password_hash, role, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, string(user.Role),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*models.User, error) {
	var (
		user models.User
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &role, &user.CreatedAt, &user.UpdatedAt)
	if notFound(err) {
		return nil, fmt.Errorf("user %s: %w", value, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	user.Role = models.Role(role)
	return &user, nil
}

func (s *Store) SetUserRole(ctx context.Context, id string, role models.Role) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`,
		string(role), time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set user role: %w", err)
	}
	return requireRow(tag, "user "+id)
}
