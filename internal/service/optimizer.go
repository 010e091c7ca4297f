package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
	"github.com/kitbuilder587/skill-optimizer/internal/feedback"
	"github.com/kitbuilder587/skill-optimizer/internal/metrics"
	"github.com/kitbuilder587/skill-optimizer/internal/repository"
	"github.com/kitbuilder587/skill-optimizer/internal/review"
)

const DefaultMaxIterations = 10

type Notifier interface {
	Notify(ctx context.Context, skill domain.Skill, sc domain.Scorecard, v domain.Verdict) error
}

type OptimizerConfig struct {
	MaxIterations int
	Thresholds    domain.Thresholds
}

// OptimizerDeps - зависимости Optimizer; Runs, Notifier и Metrics опциональны.
type OptimizerDeps struct {
	Invoker  review.Invoker
	Runs     repository.RunRepository
	Notifier Notifier
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Config   OptimizerConfig
}

type ReviewOutcome struct {
	Iteration    int
	Scorecard    domain.Scorecard
	Verdict      domain.Verdict
	Previous     *domain.ReviewRun
	Unrecognized []string
	Duration     time.Duration
}

type Optimizer struct {
	invoker  review.Invoker
	runs     repository.RunRepository
	notifier Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
	config   OptimizerConfig
}

func NewOptimizer(deps OptimizerDeps) *Optimizer {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.MaxIterations == 0 {
		deps.Config.MaxIterations = DefaultMaxIterations
	}
	if deps.Config.Thresholds == (domain.Thresholds{}) {
		deps.Config.Thresholds = domain.DefaultThresholds()
	}

	return &Optimizer{
		invoker:  deps.Invoker,
		runs:     deps.Runs,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		config:   deps.Config,
	}
}

// NextIteration returns the number the next review of skill will get: the
// count of stored runs, or 0 when history is off.
func (o *Optimizer) NextIteration(ctx context.Context, skill *domain.Skill) (int, error) {
	if o.runs == nil {
		return 0, nil
	}
	n, err := o.runs.CountBySkill(ctx, skill.Directory)
	if err != nil {
		return 0, fmt.Errorf("load review history: %w", err)
	}
	return n, nil
}

// Review runs one cycle: invoke the review tool, extract the scorecard,
// evaluate it. Invocation errors are returned unchanged.
func (o *Optimizer) Review(ctx context.Context, skill *domain.Skill) (*ReviewOutcome, error) {
	iteration, err := o.NextIteration(ctx, skill)
	if err != nil {
		return nil, err
	}
	if iteration >= o.config.MaxIterations {
		return nil, fmt.Errorf("%w: %d of %d reviews already recorded for %s",
			domain.ErrIterationBudgetExhausted, iteration, o.config.MaxIterations, skill.Name)
	}

	previous, err := o.previousRun(ctx, skill)
	if err != nil {
		return nil, err
	}

	o.logger.Info("running review",
		zap.String("skill", skill.Name),
		zap.String("path", skill.Directory),
		zap.Int("iteration", iteration),
	)

	start := time.Now()
	raw, err := o.invoker.Invoke(ctx, skill.Directory)
	duration := time.Since(start)
	if err != nil {
		o.recordFailure(err, duration)
		return nil, err
	}

	extraction := feedback.Inspect(raw)
	unrecognized := extraction.Unrecognized()
	if len(unrecognized) > 0 {
		o.logger.Warn("review output is missing scores, defaulting them to 0",
			zap.Strings("scores", unrecognized),
			zap.Int("output_bytes", len(raw)),
		)
		if o.metrics != nil {
			for _, name := range unrecognized {
				o.metrics.RecordUnrecognizedScore(name)
			}
		}
	}

	sc := extraction.Scorecard
	verdict := o.config.Thresholds.Evaluate(sc)

	o.logger.Info("review completed",
		zap.Int("average", sc.AverageScore),
		zap.Int("description", sc.DescriptionScore),
		zap.Int("content", sc.ContentScore),
		zap.Int("validation_errors", len(sc.ValidationErrors)),
		zap.Int("suggestions", len(sc.Suggestions)),
		zap.Bool("passed", verdict.OverallPass),
		zap.Strings("failed_criteria", verdict.FailedCriteria()),
		zap.Duration("duration", duration),
	)

	if o.metrics != nil {
		outcome := metrics.OutcomeFail
		if verdict.OverallPass {
			outcome = metrics.OutcomePass
		}
		o.metrics.RecordReview(outcome, duration)
		o.metrics.RecordScorecard(sc, verdict)
	}

	out := &ReviewOutcome{
		Iteration:    iteration,
		Scorecard:    sc,
		Verdict:      verdict,
		Previous:     previous,
		Unrecognized: unrecognized,
		Duration:     duration,
	}

	o.publish(ctx, skill, out)

	return out, nil
}

func (o *Optimizer) previousRun(ctx context.Context, skill *domain.Skill) (*domain.ReviewRun, error) {
	if o.runs == nil {
		return nil, nil
	}
	run, err := o.runs.Latest(ctx, skill.Directory)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load previous review: %w", err)
	}
	return run, nil
}

func (o *Optimizer) recordFailure(err error, duration time.Duration) {
	outcome := metrics.OutcomeError
	if errors.Is(err, domain.ErrReviewTimeout) {
		outcome = metrics.OutcomeTimeout
	}
	o.logger.Error("review failed",
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
		zap.Error(err),
	)
	if o.metrics != nil {
		o.metrics.RecordReview(outcome, duration)
	}
}

// publish отдает результат в историю и в уведомления параллельно.
// Ошибки sink'ов только логируются: вердикт от них не зависит.
func (o *Optimizer) publish(ctx context.Context, skill *domain.Skill, out *ReviewOutcome) {
	var g errgroup.Group

	if o.runs != nil {
		g.Go(func() error {
			run := domain.NewReviewRun(*skill, out.Iteration, out.Scorecard, out.Verdict, out.Duration)
			if err := o.runs.Create(ctx, run); err != nil {
				o.sinkFailed("history", err)
			}
			return nil
		})
	}

	if o.notifier != nil {
		g.Go(func() error {
			if err := o.notifier.Notify(ctx, *skill, out.Scorecard, out.Verdict); err != nil {
				o.sinkFailed("telegram", err)
			}
			return nil
		})
	}

	g.Wait()
}

func (o *Optimizer) sinkFailed(sink string, err error) {
	o.logger.Warn("failed to publish review", zap.String("sink", sink), zap.Error(err))
	if o.metrics != nil {
		o.metrics.RecordSinkFailure(sink)
	}
}
