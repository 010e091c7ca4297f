package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

type MockRunRepository struct {
	mu   sync.RWMutex
	runs map[string][]domain.ReviewRun // key: SkillPath

	// если задан, Create возвращает эту ошибку
	CreateErr error
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{
		runs: make(map[string][]domain.ReviewRun),
	}
}

func (m *MockRunRepository) Create(ctx context.Context, run *domain.ReviewRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, r := range m.runs[run.SkillPath] {
		if r.Iteration == run.Iteration {
			return domain.ErrDuplicateRun
		}
	}
	m.runs[run.SkillPath] = append(m.runs[run.SkillPath], *run)
	return nil
}

func (m *MockRunRepository) Latest(ctx context.Context, skillPath string) (*domain.ReviewRun, error) {
	runs, _ := m.ListBySkill(ctx, skillPath, 1)
	if len(runs) == 0 {
		return nil, domain.ErrRunNotFound
	}
	return &runs[0], nil
}

func (m *MockRunRepository) ListBySkill(ctx context.Context, skillPath string, limit int) ([]domain.ReviewRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]domain.ReviewRun, len(m.runs[skillPath]))
	copy(runs, m.runs[skillPath])
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Iteration > runs[j].Iteration
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MockRunRepository) CountBySkill(ctx context.Context, skillPath string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.runs[skillPath]), nil
}

var _ RunRepository = (*MockRunRepository)(nil)
