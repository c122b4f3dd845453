package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hackathon-platform/internal/models"
)

// CreateApplication подает заявку на участие в идее.
// Предусловия проверяются строго по порядку: существование идеи, запрет заявки
// на собственную идею, открытость набора, отсутствие дубликата.
func (r *Repository) CreateApplication(ctx context.Context, ideaID, applicantID int64, message, motivation string) (*models.Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var authorID int64
	var status string
	err = tx.QueryRow(ctx, `SELECT author_id, status FROM ideas WHERE id = $1`, ideaID).Scan(&authorID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}

	if applicantID == authorID {
		return nil, ErrSelfApplication
	}
	if status != models.IdeaStatusOpen {
		return nil, ErrIdeaNotOpen
	}

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM applications WHERE idea_id = $1 AND applicant_id = $2)`
	err = tx.QueryRow(ctx, checkQuery, ideaID, applicantID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check application existence: %w", err)
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	insertQuery := `
        INSERT INTO applications (idea_id, applicant_id, message, motivation, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, idea_id, applicant_id, message, motivation, status, applied_at
    `

	var app models.Application
	err = tx.QueryRow(ctx, insertQuery, ideaID, applicantID, message, motivation, models.ApplicationStatusPending).Scan(
		&app.ID, &app.IdeaID, &app.ApplicantID, &app.Message, &app.Motivation, &app.Status, &app.AppliedAt,
	)
	if err != nil {
		// Гонка двух одновременных заявок: уникальный индекс (idea_id, applicant_id)
		if isUniqueViolation(err) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &app, nil
}

// ListIdeaApplications получает заявки идеи с профилями заявителей (только для автора идеи)
func (r *Repository) ListIdeaApplications(ctx context.Context, ideaID, callerID int64) ([]models.Application, error) {
	var authorID int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM ideas WHERE id = $1`, ideaID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	if authorID != callerID {
		return nil, ErrNotAuthorized
	}

	query := `
        SELECT a.id, a.idea_id, a.applicant_id, a.message, a.motivation, a.status,
               a.applied_at, a.reviewed_at, a.review_message,
               u.id, u.username, u.bio, u.skills, u.avatar_url
        FROM applications a
        JOIN users u ON u.id = a.applicant_id
        WHERE a.idea_id = $1
        ORDER BY a.applied_at DESC
    `

	rows, err := r.pool.Query(ctx, query, ideaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var app models.Application
		var applicant models.User
		if err := rows.Scan(
			&app.ID, &app.IdeaID, &app.ApplicantID, &app.Message, &app.Motivation, &app.Status,
			&app.AppliedAt, &app.ReviewedAt, &app.ReviewMessage,
			&applicant.ID, &applicant.Username, &applicant.Bio, &applicant.Skills, &applicant.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		app.Applicant = &applicant
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// ListUserApplications получает заявки пользователя с названиями идей
func (r *Repository) ListUserApplications(ctx context.Context, userID int64) ([]models.Application, error) {
	query := `
        SELECT a.id, a.idea_id, i.title, a.applicant_id, a.message, a.motivation, a.status,
               a.applied_at, a.reviewed_at, a.review_message
        FROM applications a
        JOIN ideas i ON i.id = a.idea_id
        WHERE a.applicant_id = $1
        ORDER BY a.applied_at DESC
    `

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user applications: %w", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(
			&app.ID, &app.IdeaID, &app.IdeaTitle, &app.ApplicantID, &app.Message, &app.Motivation,
			&app.Status, &app.AppliedAt, &app.ReviewedAt, &app.ReviewMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// GetApplication получает заявку по ID
func (r *Repository) GetApplication(ctx context.Context, appID int64) (*models.Application, error) {
	query := `
        SELECT id, idea_id, applicant_id, message, motivation, status, applied_at, reviewed_at, review_message
        FROM applications
        WHERE id = $1
    `

	var app models.Application
	err := r.pool.QueryRow(ctx, query, appID).Scan(
		&app.ID, &app.IdeaID, &app.ApplicantID, &app.Message, &app.Motivation,
		&app.Status, &app.AppliedAt, &app.ReviewedAt, &app.ReviewMessage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// ReviewApplication рассматривает заявку от имени автора идеи.
// Отклонение терминально и не имеет побочных эффектов. Одобрение в той же
// транзакции собирает команду (см. materializeTeamTx), так что частично
// выполненного одобрения не бывает: либо заявка одобрена и команда есть,
// либо все откатилось.
func (r *Repository) ReviewApplication(ctx context.Context, ideaID, appID, reviewerID int64, approve bool, reviewMessage string) (*models.Application, *models.Team, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var idea ideaRow
	err = tx.QueryRow(ctx, `SELECT id, title, author_id, status FROM ideas WHERE id = $1`, ideaID).Scan(
		&idea.ID, &idea.Title, &idea.AuthorID, &idea.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get idea: %w", err)
	}
	if idea.AuthorID != reviewerID {
		return nil, nil, ErrNotAuthorized
	}

	var app models.Application
	err = tx.QueryRow(ctx, `SELECT id, idea_id, applicant_id, status FROM applications WHERE id = $1`, appID).Scan(
		&app.ID, &app.IdeaID, &app.ApplicantID, &app.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app.IdeaID != ideaID {
		return nil, nil, ErrNotFound
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, nil, ErrAlreadyReviewed
	}

	newStatus := models.ApplicationStatusRejected
	if approve {
		newStatus = models.ApplicationStatusApproved
	}

	updateQuery := `
        UPDATE applications
        SET status = $1, reviewed_at = NOW(), review_message = $2
        WHERE id = $3
        RETURNING id, idea_id, applicant_id, message, motivation, status, applied_at, reviewed_at, review_message
    `
	err = tx.QueryRow(ctx, updateQuery, newStatus, reviewMessage, appID).Scan(
		&app.ID, &app.IdeaID, &app.ApplicantID, &app.Message, &app.Motivation,
		&app.Status, &app.AppliedAt, &app.ReviewedAt, &app.ReviewMessage,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update application: %w", err)
	}

	var team *models.Team
	if approve {
		team, err = r.materializeTeamTx(ctx, tx, idea, app.ApplicantID)
		if err != nil {
			return nil, nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &app, team, nil
}
