package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hackathon-platform/internal/models"
)

// WorkFilter описывает параметры выборки списка работ
type WorkFilter struct {
	IdeaID *int64
	Limit  int
	Offset int
}

// WorkParams описывает данные для публикации работы
type WorkParams struct {
	Title        string
	Description  string
	Technologies []string
	ImageURL     string
	LiveURL      string
	GithubURL    string
	IdeaID       *int64
	MemberIDs    []int64
}

// CreateWork публикует работу. Создатель всегда попадает в список контрибьюторов.
func (r *Repository) CreateWork(ctx context.Context, creatorID int64, params WorkParams) (*models.Work, error) {
	if params.Technologies == nil {
		params.Technologies = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if params.IdeaID != nil {
		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ideas WHERE id = $1)`, *params.IdeaID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check idea existence: %w", err)
		}
		if !exists {
			return nil, ErrNotFound
		}
	}

	insertQuery := `
        INSERT INTO works (title, description, technologies, image_url, live_url, github_url, idea_id, creator_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, title, description, technologies, image_url, live_url, github_url, idea_id, creator_id, created_at, updated_at
    `

	var work models.Work
	err = tx.QueryRow(ctx, insertQuery,
		params.Title, params.Description, params.Technologies,
		params.ImageURL, params.LiveURL, params.GithubURL, params.IdeaID, creatorID,
	).Scan(
		&work.ID, &work.Title, &work.Description, &work.Technologies,
		&work.ImageURL, &work.LiveURL, &work.GithubURL, &work.IdeaID, &work.CreatorID,
		&work.CreatedAt, &work.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create work: %w", err)
	}

	// Создатель всегда попадает в контрибьюторы, остальные участники по списку
	contributorIDs := map[int64]bool{creatorID: true}
	for _, id := range params.MemberIDs {
		contributorIDs[id] = true
	}
	for userID := range contributorIDs {
		_, err = tx.Exec(ctx, `
            INSERT INTO work_contributors (work_id, user_id) VALUES ($1, $2)
            ON CONFLICT (work_id, user_id) DO NOTHING
        `, work.ID, userID)
		if err != nil {
			// Несуществующий участник в member_ids нарушает внешний ключ
			if isForeignKeyViolation(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to add work contributor: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &work, nil
}

// ListWorks получает страницу работ с количеством голосов.
// Количество total считается по тем же фильтрам, что и сама страница.
func (r *Repository) ListWorks(ctx context.Context, filter WorkFilter, callerID *int64) ([]models.Work, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filter.IdeaID != nil {
		args = append(args, *filter.IdeaID)
		where += fmt.Sprintf(" AND w.idea_id = $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM works w" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count works: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `
        SELECT w.id, w.title, w.description, w.technologies, w.image_url, w.live_url, w.github_url,
               w.idea_id, w.creator_id, w.created_at, w.updated_at,
               (SELECT COUNT(*) FROM work_votes wv WHERE wv.work_id = w.id) AS vote_count
        FROM works w` + where + fmt.Sprintf(`
        ORDER BY w.created_at DESC
        LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list works: %w", err)
	}
	defer rows.Close()

	var works []models.Work
	for rows.Next() {
		var work models.Work
		if err := rows.Scan(
			&work.ID, &work.Title, &work.Description, &work.Technologies,
			&work.ImageURL, &work.LiveURL, &work.GithubURL,
			&work.IdeaID, &work.CreatorID, &work.CreatedAt, &work.UpdatedAt,
			&work.VoteCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan work: %w", err)
		}
		works = append(works, work)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate works: %w", err)
	}

	if callerID != nil && len(works) > 0 {
		workIDs := make([]int64, len(works))
		for i := range works {
			workIDs[i] = works[i].ID
		}
		voted, err := r.collectIDs(ctx, `SELECT work_id FROM work_votes WHERE user_id = $1 AND work_id = ANY($2)`, *callerID, workIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get caller votes: %w", err)
		}
		for i := range works {
			v := voted[works[i].ID]
			works[i].Voted = &v
		}
	}

	return works, total, nil
}

// GetWork получает работу с контрибьюторами
func (r *Repository) GetWork(ctx context.Context, workID int64, callerID *int64) (*models.Work, error) {
	query := `
        SELECT w.id, w.title, w.description, w.technologies, w.image_url, w.live_url, w.github_url,
               w.idea_id, w.creator_id, w.created_at, w.updated_at,
               (SELECT COUNT(*) FROM work_votes wv WHERE wv.work_id = w.id) AS vote_count
        FROM works w
        WHERE w.id = $1
    `

	var work models.Work
	err := r.pool.QueryRow(ctx, query, workID).Scan(
		&work.ID, &work.Title, &work.Description, &work.Technologies,
		&work.ImageURL, &work.LiveURL, &work.GithubURL,
		&work.IdeaID, &work.CreatorID, &work.CreatedAt, &work.UpdatedAt,
		&work.VoteCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	contribQuery := `
        SELECT u.id, u.username, u.bio, u.skills, u.avatar_url
        FROM users u
        JOIN work_contributors wc ON wc.user_id = u.id
        WHERE wc.work_id = $1
        ORDER BY u.username
    `
	rows, err := r.pool.Query(ctx, contribQuery, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to get work contributors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Bio, &user.Skills, &user.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		work.Contributors = append(work.Contributors, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributors: %w", err)
	}

	if callerID != nil {
		var voted bool
		err = r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM work_votes WHERE work_id = $1 AND user_id = $2)`,
			workID, *callerID).Scan(&voted)
		if err != nil {
			return nil, fmt.Errorf("failed to check caller vote: %w", err)
		}
		work.Voted = &voted
	}

	return &work, nil
}

// ToggleWorkVote переключает голос пользователя за работу.
// Возвращает новое состояние и актуальное количество голосов.
func (r *Repository) ToggleWorkVote(ctx context.Context, workID, userID int64) (bool, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM works WHERE id = $1)`, workID).Scan(&exists)
	if err != nil {
		return false, 0, fmt.Errorf("failed to check work existence: %w", err)
	}
	if !exists {
		return false, 0, ErrNotFound
	}

	voted := false
	tag, err := tx.Exec(ctx, `DELETE FROM work_votes WHERE work_id = $1 AND user_id = $2`, workID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to delete vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// ON CONFLICT покрывает гонку двух одновременных голосов
		_, err = tx.Exec(ctx, `INSERT INTO work_votes (work_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, workID, userID)
		if err != nil {
			return false, 0, fmt.Errorf("failed to insert vote: %w", err)
		}
		voted = true
	}

	var count int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM work_votes WHERE work_id = $1`, workID).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("failed to count votes: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return voted, count, nil
}
