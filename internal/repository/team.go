package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hackathon-platform/internal/models"
)

// ideaRow содержит минимальный срез идеи, нужный workflow-операциям
type ideaRow struct {
	ID       int64
	Title    string
	AuthorID int64
	Status   string
}

// materializeTeamTx собирает команду вокруг идеи внутри уже открытой транзакции:
// создает команду, добавляет автора лидером и заявителя участником, переводит
// идею open -> development. Если команда для идеи уже есть, возвращает ErrTeamExists
// (уникальный индекс teams(idea_id) закрывает гонку двух одобрений).
func (r *Repository) materializeTeamTx(ctx context.Context, tx pgx.Tx, idea ideaRow, applicantID int64) (*models.Team, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE idea_id = $1)`, idea.ID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check team existence: %w", err)
	}
	if exists {
		return nil, ErrTeamExists
	}

	teamName := idea.Title + " team"

	var team models.Team
	insertQuery := `
        INSERT INTO teams (idea_id, name, status)
        VALUES ($1, $2, $3)
        RETURNING id, idea_id, name, description, status, discord_invite_url, created_at, updated_at
    `
	err = tx.QueryRow(ctx, insertQuery, idea.ID, teamName, models.TeamStatusActive).Scan(
		&team.ID, &team.IdeaID, &team.Name, &team.Description, &team.Status,
		&team.DiscordInviteURL, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTeamExists
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	memberQuery := `INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`
	if _, err = tx.Exec(ctx, memberQuery, team.ID, idea.AuthorID, models.TeamRoleLeader); err != nil {
		return nil, fmt.Errorf("failed to add team leader: %w", err)
	}
	if _, err = tx.Exec(ctx, memberQuery, team.ID, applicantID, models.TeamRoleMember); err != nil {
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}

	// Идея уходит в разработку; если уже в разработке, оставляем как есть
	_, err = tx.Exec(ctx, `UPDATE ideas SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		models.IdeaStatusDevelopment, idea.ID, models.IdeaStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to transition idea status: %w", err)
	}

	return &team, nil
}

// CreateTeamFromApplication явно создает команду из одобренной заявки.
// Вызвать может автор идеи или сам заявитель (оба стороны одобренной заявки).
func (r *Repository) CreateTeamFromApplication(ctx context.Context, appID, requesterID int64) (*models.Team, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var app models.Application
	err = tx.QueryRow(ctx, `SELECT id, idea_id, applicant_id, status FROM applications WHERE id = $1`, appID).Scan(
		&app.ID, &app.IdeaID, &app.ApplicantID, &app.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app.Status != models.ApplicationStatusApproved {
		return nil, ErrNotApproved
	}

	var idea ideaRow
	err = tx.QueryRow(ctx, `SELECT id, title, author_id, status FROM ideas WHERE id = $1`, app.IdeaID).Scan(
		&idea.ID, &idea.Title, &idea.AuthorID, &idea.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}

	if requesterID != idea.AuthorID && requesterID != app.ApplicantID {
		return nil, ErrNotAuthorized
	}

	team, err := r.materializeTeamTx(ctx, tx, idea, app.ApplicantID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return team, nil
}

// ProcessProjectApplication рассматривает заявку через проектный маршрут.
// В отличие от прямого рассмотрения (ReviewApplication), при существующей
// команде одобренный заявитель добавляется в нее участником, а не ловит
// конфликт. Оба маршрута сохранены намеренно.
func (r *Repository) ProcessProjectApplication(ctx context.Context, ideaID, appID, reviewerID int64, approve bool, reviewMessage string) (*models.Application, *models.Team, error) {
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

	if !approve {
		if err = tx.Commit(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &app, nil, nil
	}

	// Если команда уже есть, пополняем состав, иначе собираем новую
	var team models.Team
	err = tx.QueryRow(ctx, `
        SELECT id, idea_id, name, description, status, discord_invite_url, created_at, updated_at
        FROM teams WHERE idea_id = $1
    `, ideaID).Scan(
		&team.ID, &team.IdeaID, &team.Name, &team.Description, &team.Status,
		&team.DiscordInviteURL, &team.CreatedAt, &team.UpdatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		created, mErr := r.materializeTeamTx(ctx, tx, idea, app.ApplicantID)
		if mErr != nil {
			return nil, nil, mErr
		}
		team = *created
	case err != nil:
		return nil, nil, fmt.Errorf("failed to get team: %w", err)
	default:
		_, err = tx.Exec(ctx, `
            INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)
            ON CONFLICT (team_id, user_id) DO NOTHING
        `, team.ID, app.ApplicantID, models.TeamRoleMember)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to add team member: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &app, &team, nil
}

// GetTeam получает команду по ID со списком участников
func (r *Repository) GetTeam(ctx context.Context, teamID int64) (*models.Team, error) {
	query := `
        SELECT t.id, t.idea_id, i.title, t.name, t.description, t.status,
               t.discord_invite_url, t.created_at, t.updated_at
        FROM teams t
        JOIN ideas i ON i.id = t.idea_id
        WHERE t.id = $1
    `

	var team models.Team
	err := r.pool.QueryRow(ctx, query, teamID).Scan(
		&team.ID, &team.IdeaID, &team.IdeaTitle, &team.Name, &team.Description,
		&team.Status, &team.DiscordInviteURL, &team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	members, err := r.getTeamMembers(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	team.Members = members

	return &team, nil
}

// GetTeamByIdea получает команду идеи со списком участников
func (r *Repository) GetTeamByIdea(ctx context.Context, ideaID int64) (*models.Team, error) {
	query := `
        SELECT id, idea_id, name, description, status, discord_invite_url, created_at, updated_at
        FROM teams
        WHERE idea_id = $1
    `

	var team models.Team
	err := r.pool.QueryRow(ctx, query, ideaID).Scan(
		&team.ID, &team.IdeaID, &team.Name, &team.Description, &team.Status,
		&team.DiscordInviteURL, &team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by idea: %w", err)
	}

	members, err := r.getTeamMembers(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	team.Members = members

	return &team, nil
}

// getTeamMembers получает состав команды
func (r *Repository) getTeamMembers(ctx context.Context, teamID int64) ([]models.TeamMember, error) {
	query := `
        SELECT tm.id, tm.team_id, tm.user_id, u.username, tm.role, tm.joined_at
        FROM team_members tm
        JOIN users u ON u.id = tm.user_id
        WHERE tm.team_id = $1
        ORDER BY tm.joined_at
    `

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team members: %w", err)
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		if err := rows.Scan(&member.ID, &member.TeamID, &member.UserID, &member.Username, &member.Role, &member.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// UpdateTeam обновляет команду от имени лидера
func (r *Repository) UpdateTeam(ctx context.Context, teamID, requesterID int64, name, description, discordInviteURL *string) (*models.Team, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.requireLeaderTx(ctx, tx, teamID, requesterID); err != nil {
		return nil, err
	}

	set := "updated_at = NOW()"
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", column, len(args))
	}
	if name != nil {
		add("name", *name)
	}
	if description != nil {
		add("description", *description)
	}
	if discordInviteURL != nil {
		add("discord_invite_url", *discordInviteURL)
	}

	args = append(args, teamID)
	query := fmt.Sprintf(`
        UPDATE teams SET %s WHERE id = $%d
        RETURNING id, idea_id, name, description, status, discord_invite_url, created_at, updated_at
    `, set, len(args))

	var team models.Team
	err = tx.QueryRow(ctx, query, args...).Scan(
		&team.ID, &team.IdeaID, &team.Name, &team.Description, &team.Status,
		&team.DiscordInviteURL, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, nil
}

// DisbandTeam распускает команду от имени лидера: команда помечается
// disbanded (строки участников сохраняются), идея безусловно возвращается
// в open (даже из completed). Возвращает ID участников для уведомлений.
func (r *Repository) DisbandTeam(ctx context.Context, teamID, requesterID int64) (*models.Team, []int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var team models.Team
	err = tx.QueryRow(ctx, `
        SELECT id, idea_id, name, description, status, discord_invite_url, created_at, updated_at
        FROM teams WHERE id = $1
    `, teamID).Scan(
		&team.ID, &team.IdeaID, &team.Name, &team.Description, &team.Status,
		&team.DiscordInviteURL, &team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team.Status != models.TeamStatusActive {
		return nil, nil, ErrNotFound
	}

	if err := r.requireLeaderTx(ctx, tx, teamID, requesterID); err != nil {
		return nil, nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE teams SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.TeamStatusDisbanded, teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to disband team: %w", err)
	}
	team.Status = models.TeamStatusDisbanded

	_, err = tx.Exec(ctx, `UPDATE ideas SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.IdeaStatusOpen, team.IdeaID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reset idea status: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT user_id FROM team_members WHERE team_id = $1`, teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get team members: %w", err)
	}

	var memberIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		memberIDs = append(memberIDs, userID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, memberIDs, nil
}

// requireLeaderTx проверяет, что пользователь является лидером команды
func (r *Repository) requireLeaderTx(ctx context.Context, tx pgx.Tx, teamID, userID int64) error {
	var isLeader bool
	query := `SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2 AND role = $3)`
	if err := tx.QueryRow(ctx, query, teamID, userID, models.TeamRoleLeader).Scan(&isLeader); err != nil {
		return fmt.Errorf("failed to check team leader: %w", err)
	}
	if !isLeader {
		return ErrNotLeader
	}
	return nil
}
