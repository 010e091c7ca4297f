package integration

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
	pgRepo "github.com/kitbuilder587/skill-optimizer/internal/repository/postgres"
	"github.com/kitbuilder587/skill-optimizer/internal/review/mock"
	"github.com/kitbuilder587/skill-optimizer/internal/service"
)

var testDB *pgRepo.DB

func TestMain(m *testing.M) {
	if os.Getenv("SHORT_TESTS") == "1" {
		os.Exit(0)
	}

	ctx := context.Background()

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic(err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	testDB, err = pgRepo.New(ctx, connStr)
	if err != nil {
		panic(err)
	}

	// дважды: миграция должна быть идемпотентной
	for i := 0; i < 2; i++ {
		if err := testDB.Migrate(ctx); err != nil {
			panic(err)
		}
	}

	code := m.Run()

	testDB.Close()
	pgContainer.Terminate(ctx)

	os.Exit(code)
}

func newRun(path string, iteration int, passed bool) *domain.ReviewRun {
	skill := domain.Skill{Name: "pdf-tools", Directory: path}
	sc := domain.Scorecard{
		AverageScore:     70 + iteration,
		DescriptionScore: 90 + iteration,
		ContentScore:     80 + iteration,
		ValidationErrors: []string{"Error: missing name"},
		Suggestions:      []string{"Add examples", "Add trigger phrases"},
	}
	return domain.NewReviewRun(skill, iteration, sc, domain.Verdict{OverallPass: passed}, 1500*time.Millisecond)
}

func TestRunRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	repo := pgRepo.NewRunRepo(testDB)
	path := "/skills/run-repo"

	_, err := repo.Latest(ctx, path)
	if !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("Latest() on empty history error = %v, want ErrRunNotFound", err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, newRun(path, i, i == 2)); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	count, err := repo.CountBySkill(ctx, path)
	if err != nil {
		t.Fatalf("CountBySkill() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountBySkill() = %d, want 3", count)
	}

	latest, err := repo.Latest(ctx, path)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Iteration != 2 || !latest.Passed {
		t.Errorf("Latest() = iteration %d passed %v, want 2 true", latest.Iteration, latest.Passed)
	}
	if latest.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", latest.Duration)
	}
	if !reflect.DeepEqual(latest.Suggestions, []string{"Add examples", "Add trigger phrases"}) {
		t.Errorf("Suggestions = %v", latest.Suggestions)
	}

	all, err := repo.ListBySkill(ctx, path, 0)
	if err != nil {
		t.Fatalf("ListBySkill() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListBySkill(limit 0) len = %d, want 3", len(all))
	}
	if all[0].Iteration != 2 || all[2].Iteration != 0 {
		t.Errorf("ListBySkill() order = %d..%d, want newest first", all[0].Iteration, all[2].Iteration)
	}

	limited, err := repo.ListBySkill(ctx, path, 2)
	if err != nil {
		t.Fatalf("ListBySkill() error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListBySkill(limit 2) len = %d, want 2", len(limited))
	}

	err = repo.Create(ctx, newRun(path, 1, false))
	if !errors.Is(err, domain.ErrDuplicateRun) {
		t.Errorf("Create() duplicate iteration error = %v, want ErrDuplicateRun", err)
	}
}

func TestRunRepository_EmptySlices_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	repo := pgRepo.NewRunRepo(testDB)
	path := "/skills/empty-slices"

	run := domain.NewReviewRun(domain.Skill{Name: "clean", Directory: path}, 0,
		domain.Scorecard{AverageScore: 97, DescriptionScore: 100, ContentScore: 95},
		domain.Verdict{OverallPass: true}, time.Second)
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Latest(ctx, path)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if len(got.ValidationErrors) != 0 || len(got.Suggestions) != 0 {
		t.Errorf("expected empty slices, got %v / %v", got.ValidationErrors, got.Suggestions)
	}
}

func TestOptimizer_History_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	skill := &domain.Skill{Name: "history", Directory: "/skills/optimizer-history"}

	invoker := mock.New().WithReport("Description: 85%\nContent: 70%\nAverage Score: 78%\n")
	opt := service.NewOptimizer(service.OptimizerDeps{
		Invoker: invoker,
		Runs:    pgRepo.NewRunRepo(testDB),
		Config:  service.OptimizerConfig{MaxIterations: 2},
	})

	first, err := opt.Review(ctx, skill)
	if err != nil {
		t.Fatalf("first Review() error = %v", err)
	}
	if first.Iteration != 0 || first.Previous != nil {
		t.Errorf("first review = iteration %d previous %v", first.Iteration, first.Previous)
	}

	invoker.WithReport("Description: 100%\nContent: 92%\nAverage Score: 96%\n")
	second, err := opt.Review(ctx, skill)
	if err != nil {
		t.Fatalf("second Review() error = %v", err)
	}
	if second.Iteration != 1 {
		t.Errorf("second Iteration = %d, want 1", second.Iteration)
	}
	if second.Previous == nil || second.Previous.DescriptionScore != 85 {
		t.Errorf("second Previous = %+v, want the first run", second.Previous)
	}
	if !second.Verdict.OverallPass {
		t.Errorf("second verdict failed: %v", second.Verdict.FailedCriteria())
	}

	_, err = opt.Review(ctx, skill)
	if !errors.Is(err, domain.ErrIterationBudgetExhausted) {
		t.Errorf("third Review() error = %v, want ErrIterationBudgetExhausted", err)
	}
}
