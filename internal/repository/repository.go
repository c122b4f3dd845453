// repository/repository.go
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSelfApplication   = errors.New("cannot apply to own idea")
	ErrIdeaNotOpen       = errors.New("idea is not accepting applications")
	ErrAlreadyApplied    = errors.New("application already exists")
	ErrAlreadyReviewed   = errors.New("application already reviewed")
	ErrNotApproved       = errors.New("application is not approved")
	ErrTeamExists        = errors.New("team already exists for this idea")
	ErrNotLeader         = errors.New("only the team leader can do this")
	ErrAlreadyMember     = errors.New("user is already a team member")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// isUniqueViolation проверяет, что ошибка является нарушением уникального ограничения (SQLSTATE 23505).
// Уникальные индексы служат последней линией защиты от гонок между параллельными запросами.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation проверяет, что ошибка является нарушением внешнего ключа (SQLSTATE 23503)
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
