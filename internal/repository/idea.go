package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hackathon-platform/internal/models"
)

// IdeaFilter описывает параметры выборки списка идей
type IdeaFilter struct {
	Status   string
	Skill    string
	AuthorID *int64
	Limit    int
	Offset   int
}

// IdeaUpdate описывает изменяемые поля идеи (nil значит поле не меняется)
type IdeaUpdate struct {
	Title          *string
	Description    *string
	RequiredSkills *[]string
	Status         *string
	Progress       *int
	StartDate      *time.Time
	Deadline       *time.Time
}

// CreateIdea создает новую идею со статусом open
func (r *Repository) CreateIdea(ctx context.Context, authorID int64, title, description string, requiredSkills []string) (*models.Idea, error) {
	if requiredSkills == nil {
		requiredSkills = []string{}
	}

	query := `
        INSERT INTO ideas (title, description, required_skills, author_id, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, title, description, required_skills, author_id, status, created_at, updated_at
    `

	var idea models.Idea
	err := r.pool.QueryRow(ctx, query, title, description, requiredSkills, authorID, models.IdeaStatusOpen).Scan(
		&idea.ID, &idea.Title, &idea.Description, &idea.RequiredSkills,
		&idea.AuthorID, &idea.Status, &idea.CreatedAt, &idea.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}

	return &idea, nil
}

// ListIdeas получает страницу идей с учетом фильтров.
// Количество total считается по тем же фильтрам, что и сама страница.
func (r *Repository) ListIdeas(ctx context.Context, filter IdeaFilter, callerID *int64) ([]models.Idea, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND i.status = $%d", len(args))
	}
	if filter.Skill != "" {
		args = append(args, filter.Skill)
		where += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM unnest(i.required_skills) s WHERE s ILIKE '%%' || $%d || '%%')", len(args))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		where += fmt.Sprintf(" AND i.author_id = $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM ideas i" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ideas: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `
        SELECT i.id, i.title, i.description, i.required_skills, i.author_id, u.username,
               i.status, i.progress_percentage, i.start_date, i.deadline, i.created_at, i.updated_at,
               (SELECT COUNT(*) FROM idea_likes il WHERE il.idea_id = i.id) AS like_count,
               (SELECT COUNT(*) FROM applications a WHERE a.idea_id = i.id) AS applications_count
        FROM ideas i
        JOIN users u ON u.id = i.author_id` + where + fmt.Sprintf(`
        ORDER BY i.created_at DESC
        LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []models.Idea
	for rows.Next() {
		var idea models.Idea
		if err := rows.Scan(
			&idea.ID, &idea.Title, &idea.Description, &idea.RequiredSkills,
			&idea.AuthorID, &idea.AuthorUsername, &idea.Status,
			&idea.Progress, &idea.StartDate, &idea.Deadline,
			&idea.CreatedAt, &idea.UpdatedAt,
			&idea.LikeCount, &idea.ApplicationsCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate ideas: %w", err)
	}

	if callerID != nil {
		if err := r.annotateIdeasForCaller(ctx, ideas, *callerID); err != nil {
			return nil, 0, err
		}
	}

	return ideas, total, nil
}

// annotateIdeasForCaller проставляет флаги liked/has_applied для вошедшего пользователя
func (r *Repository) annotateIdeasForCaller(ctx context.Context, ideas []models.Idea, callerID int64) error {
	if len(ideas) == 0 {
		return nil
	}

	ideaIDs := make([]int64, len(ideas))
	for i := range ideas {
		ideaIDs[i] = ideas[i].ID
	}

	liked, err := r.collectIDs(ctx, `SELECT idea_id FROM idea_likes WHERE user_id = $1 AND idea_id = ANY($2)`, callerID, ideaIDs)
	if err != nil {
		return fmt.Errorf("failed to get caller likes: %w", err)
	}
	applied, err := r.collectIDs(ctx, `SELECT idea_id FROM applications WHERE applicant_id = $1 AND idea_id = ANY($2)`, callerID, ideaIDs)
	if err != nil {
		return fmt.Errorf("failed to get caller applications: %w", err)
	}

	for i := range ideas {
		l := liked[ideas[i].ID]
		a := applied[ideas[i].ID]
		ideas[i].Liked = &l
		ideas[i].HasApplied = &a
	}

	return nil
}

func (r *Repository) collectIDs(ctx context.Context, query string, args ...interface{}) (map[int64]bool, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

// GetIdea получает идею с проекцией для детального просмотра
func (r *Repository) GetIdea(ctx context.Context, ideaID int64, callerID *int64) (*models.Idea, error) {
	query := `
        SELECT i.id, i.title, i.description, i.required_skills, i.author_id, u.username,
               i.status, i.progress_percentage, i.start_date, i.deadline, i.created_at, i.updated_at,
               (SELECT COUNT(*) FROM idea_likes il WHERE il.idea_id = i.id) AS like_count,
               (SELECT COUNT(*) FROM applications a WHERE a.idea_id = i.id) AS applications_count
        FROM ideas i
        JOIN users u ON u.id = i.author_id
        WHERE i.id = $1
    `

	var idea models.Idea
	err := r.pool.QueryRow(ctx, query, ideaID).Scan(
		&idea.ID, &idea.Title, &idea.Description, &idea.RequiredSkills,
		&idea.AuthorID, &idea.AuthorUsername, &idea.Status,
		&idea.Progress, &idea.StartDate, &idea.Deadline,
		&idea.CreatedAt, &idea.UpdatedAt,
		&idea.LikeCount, &idea.ApplicationsCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}

	// Команда идеи, если уже собрана
	team, err := r.GetTeamByIdea(ctx, ideaID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	idea.Team = team

	if callerID != nil {
		ideaSlice := []models.Idea{idea}
		if err := r.annotateIdeasForCaller(ctx, ideaSlice, *callerID); err != nil {
			return nil, err
		}
		idea = ideaSlice[0]
	}

	return &idea, nil
}

// UpdateIdea обновляет идею от имени автора.
// Явная смена статуса разрешена только по цепочке open -> development -> completed.
func (r *Repository) UpdateIdea(ctx context.Context, ideaID, authorID int64, upd IdeaUpdate) (*models.Idea, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID int64
	var status string
	err = tx.QueryRow(ctx, `SELECT author_id, status FROM ideas WHERE id = $1`, ideaID).Scan(&ownerID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea for update: %w", err)
	}
	if ownerID != authorID {
		return nil, ErrNotAuthorized
	}

	set := "updated_at = NOW()"
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", column, len(args))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.RequiredSkills != nil {
		add("required_skills", *upd.RequiredSkills)
	}
	if upd.Status != nil {
		if !validIdeaTransition(status, *upd.Status) {
			return nil, ErrInvalidTransition
		}
		add("status", *upd.Status)
	}
	if upd.Progress != nil {
		add("progress_percentage", *upd.Progress)
	}
	if upd.StartDate != nil {
		add("start_date", *upd.StartDate)
	}
	if upd.Deadline != nil {
		add("deadline", *upd.Deadline)
	}

	args = append(args, ideaID)
	query := fmt.Sprintf(`
        UPDATE ideas SET %s WHERE id = $%d
        RETURNING id, title, description, required_skills, author_id, status,
                  progress_percentage, start_date, deadline, created_at, updated_at
    `, set, len(args))

	var idea models.Idea
	err = tx.QueryRow(ctx, query, args...).Scan(
		&idea.ID, &idea.Title, &idea.Description, &idea.RequiredSkills,
		&idea.AuthorID, &idea.Status, &idea.Progress, &idea.StartDate, &idea.Deadline,
		&idea.CreatedAt, &idea.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update idea: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &idea, nil
}

// validIdeaTransition проверяет явную смену статуса автором
func validIdeaTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch {
	case from == models.IdeaStatusOpen && to == models.IdeaStatusDevelopment:
		return true
	case from == models.IdeaStatusDevelopment && to == models.IdeaStatusCompleted:
		return true
	}
	return false
}

// ToggleIdeaLike переключает лайк пользователя на идее.
// Возвращает новое состояние и актуальное количество лайков.
func (r *Repository) ToggleIdeaLike(ctx context.Context, ideaID, userID int64) (bool, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ideas WHERE id = $1)`, ideaID).Scan(&exists)
	if err != nil {
		return false, 0, fmt.Errorf("failed to check idea existence: %w", err)
	}
	if !exists {
		return false, 0, ErrNotFound
	}

	liked := false
	tag, err := tx.Exec(ctx, `DELETE FROM idea_likes WHERE idea_id = $1 AND user_id = $2`, ideaID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to delete like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// ON CONFLICT покрывает гонку двух одновременных лайков: строка уже есть,
		// итоговое состояние в обоих случаях одно: "лайкнуто"
		_, err = tx.Exec(ctx, `INSERT INTO idea_likes (idea_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, ideaID, userID)
		if err != nil {
			return false, 0, fmt.Errorf("failed to insert like: %w", err)
		}
		liked = true
	}

	var count int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM idea_likes WHERE idea_id = $1`, ideaID).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("failed to count likes: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return liked, count, nil
}
