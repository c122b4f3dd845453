package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hackathon-platform/internal/models"
)

// CreateUser регистрирует нового пользователя
func (r *Repository) CreateUser(ctx context.Context, email, username, passHash, bio string, skills []string) (*models.User, error) {
	if skills == nil {
		skills = []string{}
	}

	query := `
        INSERT INTO users (email, username, password_hash, bio, skills)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, email, username, bio, skills, avatar_url, created_at, updated_at
    `

	var user models.User
	err := r.pool.QueryRow(ctx, query, email, username, passHash, bio, skills).Scan(
		&user.ID, &user.Email, &user.Username, &user.Bio, &user.Skills,
		&user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail получает пользователя по email вместе с хэшем пароля (для логина)
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
        SELECT id, email, username, password_hash, bio, skills, avatar_url, created_at, updated_at
        FROM users
        WHERE email = $1
    `

	var user models.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Username, &user.PassHash, &user.Bio,
		&user.Skills, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUser получает пользователя по ID
func (r *Repository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `
        SELECT id, email, username, bio, skills, avatar_url, created_at, updated_at
        FROM users
        WHERE id = $1
    `

	var user models.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Email, &user.Username, &user.Bio, &user.Skills,
		&user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// UpdateUserProfile обновляет профиль пользователя
func (r *Repository) UpdateUserProfile(ctx context.Context, userID int64, bio string, skills []string, avatarURL string) (*models.User, error) {
	if skills == nil {
		skills = []string{}
	}

	query := `
        UPDATE users
        SET bio = $1, skills = $2, avatar_url = $3, updated_at = NOW()
        WHERE id = $4
        RETURNING id, email, username, bio, skills, avatar_url, created_at, updated_at
    `

	var user models.User
	err := r.pool.QueryRow(ctx, query, bio, skills, avatarURL, userID).Scan(
		&user.ID, &user.Email, &user.Username, &user.Bio, &user.Skills,
		&user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	return &user, nil
}
