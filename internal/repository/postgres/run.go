package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

const runColumns = `id, skill_name, skill_path, iteration, average_score, description_score,
	content_score, validation_errors, suggestions, passed, duration_ms, created_at`

func (r *RunRepo) Create(ctx context.Context, run *domain.ReviewRun) error {
	query := `
		INSERT INTO review_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := r.db.Pool.QueryRow(ctx, query,
		run.ID,
		run.SkillName,
		run.SkillPath,
		run.Iteration,
		run.AverageScore,
		run.DescriptionScore,
		run.ContentScore,
		nonNil(run.ValidationErrors),
		nonNil(run.Suggestions),
		run.Passed,
		run.Duration.Milliseconds(),
		createdAt,
	).Scan(&run.CreatedAt)
	if err != nil {
		if isDuplicateError(err) {
			return domain.ErrDuplicateRun
		}
		return fmt.Errorf("create review run: %w", err)
	}

	return nil
}

func (r *RunRepo) Latest(ctx context.Context, skillPath string) (*domain.ReviewRun, error) {
	query := `SELECT ` + runColumns + ` FROM review_runs WHERE skill_path = $1 ORDER BY iteration DESC LIMIT 1`

	run, err := scanRun(r.db.Pool.QueryRow(ctx, query, skillPath))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("get latest review run: %w", err)
	}
	return run, nil
}

func (r *RunRepo) ListBySkill(ctx context.Context, skillPath string, limit int) ([]domain.ReviewRun, error) {
	query := `SELECT ` + runColumns + ` FROM review_runs WHERE skill_path = $1 ORDER BY iteration DESC LIMIT $2`

	// LIMIT NULL - без ограничения
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.db.Pool.Query(ctx, query, skillPath, lim)
	if err != nil {
		return nil, fmt.Errorf("list review runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ReviewRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review runs: %w", err)
	}

	return runs, nil
}

func (r *RunRepo) CountBySkill(ctx context.Context, skillPath string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM review_runs WHERE skill_path = $1`, skillPath).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count review runs: %w", err)
	}
	return count, nil
}

func scanRun(row pgx.Row) (*domain.ReviewRun, error) {
	var run domain.ReviewRun
	var durationMs int64
	err := row.Scan(
		&run.ID,
		&run.SkillName,
		&run.SkillPath,
		&run.Iteration,
		&run.AverageScore,
		&run.DescriptionScore,
		&run.ContentScore,
		&run.ValidationErrors,
		&run.Suggestions,
		&run.Passed,
		&durationMs,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}

// NOT NULL колонки: nil слайс pgx отправит как NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// isDuplicateError checks if the error is a PostgreSQL unique constraint violation
func isDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
