package repository

import (
	"context"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

// RunRepository - история запусков review, ключ - путь к директории скилла.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ReviewRun) error
	Latest(ctx context.Context, skillPath string) (*domain.ReviewRun, error)
	ListBySkill(ctx context.Context, skillPath string, limit int) ([]domain.ReviewRun, error)
	CountBySkill(ctx context.Context, skillPath string) (int, error)
}
