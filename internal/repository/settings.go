package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hackathon-platform/internal/models"
)

// SettingsParams описывает изменяемые настройки проекта (nil значит поле не меняется)
type SettingsParams struct {
	Recruiting   *bool
	ExternalLink *string
	MaxMembers   *int
}

// GetProjectSettings получает настройки проекта; если строки нет, возвращаются значения по умолчанию
func (r *Repository) GetProjectSettings(ctx context.Context, ideaID int64) (*models.ProjectSettings, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ideas WHERE id = $1)`, ideaID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check idea existence: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	query := `
        SELECT idea_id, recruiting, external_link, max_members, updated_at
        FROM project_settings
        WHERE idea_id = $1
    `

	var settings models.ProjectSettings
	err = r.pool.QueryRow(ctx, query, ideaID).Scan(
		&settings.IdeaID, &settings.Recruiting, &settings.ExternalLink,
		&settings.MaxMembers, &settings.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// Строка еще не создана, отдаем значения по умолчанию
		return &models.ProjectSettings{IdeaID: ideaID, Recruiting: true, MaxMembers: 5}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project settings: %w", err)
	}

	return &settings, nil
}

// UpsertProjectSettings создает или обновляет настройки проекта (только автор идеи).
// На idea_id стоит уникальное ограничение, поэтому строка всегда одна.
func (r *Repository) UpsertProjectSettings(ctx context.Context, ideaID, requesterID int64, params SettingsParams) (*models.ProjectSettings, error) {
	var authorID int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM ideas WHERE id = $1`, ideaID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	if authorID != requesterID {
		return nil, ErrNotAuthorized
	}

	current, err := r.GetProjectSettings(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if params.Recruiting != nil {
		current.Recruiting = *params.Recruiting
	}
	if params.ExternalLink != nil {
		current.ExternalLink = *params.ExternalLink
	}
	if params.MaxMembers != nil {
		current.MaxMembers = *params.MaxMembers
	}

	query := `
        INSERT INTO project_settings (idea_id, recruiting, external_link, max_members)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (idea_id) DO UPDATE
        SET recruiting = excluded.recruiting,
            external_link = excluded.external_link,
            max_members = excluded.max_members,
            updated_at = NOW()
        RETURNING idea_id, recruiting, external_link, max_members, updated_at
    `

	var settings models.ProjectSettings
	err = r.pool.QueryRow(ctx, query, ideaID, current.Recruiting, current.ExternalLink, current.MaxMembers).Scan(
		&settings.IdeaID, &settings.Recruiting, &settings.ExternalLink,
		&settings.MaxMembers, &settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert project settings: %w", err)
	}

	return &settings, nil
}
