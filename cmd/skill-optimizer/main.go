package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/skill-optimizer/internal/config"
	"github.com/kitbuilder587/skill-optimizer/internal/domain"
	"github.com/kitbuilder587/skill-optimizer/internal/metrics"
	"github.com/kitbuilder587/skill-optimizer/internal/notify/telegram"
	"github.com/kitbuilder587/skill-optimizer/internal/report"
	"github.com/kitbuilder587/skill-optimizer/internal/repository/postgres"
	"github.com/kitbuilder587/skill-optimizer/internal/review"
	"github.com/kitbuilder587/skill-optimizer/internal/service"
	"github.com/kitbuilder587/skill-optimizer/internal/skill"
)

const (
	exitPass            = 0
	exitCriteriaNotMet  = 1
	exitFailure         = 2
	exitBudgetExhausted = 3
)

const pushTimeout = 10 * time.Second

type options struct {
	skillPath     string
	maxIterations int
	timeout       time.Duration
	logLevel      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitPass
		}
		fmt.Fprintf(stderr, "skill-optimizer: %v\n", err)
		return exitFailure
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "skill-optimizer: load config: %v\n", err)
		return exitFailure
	}
	if err := applyOverrides(cfg, opts); err != nil {
		fmt.Fprintf(stderr, "skill-optimizer: %v\n", err)
		return exitFailure
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "skill-optimizer: init logger: %v\n", err)
		return exitFailure
	}
	defer logger.Sync()

	rep := report.New()

	sk, err := skill.Load(opts.skillPath, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	version, err := review.CheckInstalled(ctx, cfg.Review.Command[0])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	logger.Debug("review tool found", zap.String("version", version))

	invoker, err := review.NewCommandInvoker(review.Config{
		Command: cfg.Review.Command,
		Timeout: cfg.Review.Timeout,
	}, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	m := metrics.New()
	deps := service.OptimizerDeps{
		Invoker: invoker,
		Logger:  logger,
		Metrics: m,
		Config: service.OptimizerConfig{
			MaxIterations: cfg.MaxIterations,
			Thresholds:    domain.DefaultThresholds(),
		},
	}

	if cfg.Database.URL != "" {
		db, err := postgres.New(ctx, cfg.Database.URL)
		if err != nil {
			fmt.Fprintf(stderr, "Error: connect to history database: %v\n", err)
			return exitFailure
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: migrate history database: %v\n", err)
			return exitFailure
		}
		deps.Runs = postgres.NewRunRepo(db)
		logger.Info("review history enabled")
	}

	if cfg.Telegram.Enabled() {
		notifier, err := telegram.New(telegram.Config{
			Token:  cfg.Telegram.Token,
			ChatID: cfg.Telegram.ChatID,
		}, logger)
		if err != nil {
			// уведомления опциональны, review идет дальше
			logger.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			deps.Notifier = notifier
		}
	}

	optimizer := service.NewOptimizer(deps)
	if cfg.Metrics.PushgatewayURL != "" {
		defer pushMetrics(m, cfg.Metrics, sk.Name, logger)
	}

	if err := rep.RenderHeader(stdout, *sk, deps.Config.Thresholds, cfg.MaxIterations); err != nil {
		logger.Warn("failed to write report", zap.Error(err))
	}

	iteration, err := optimizer.NextIteration(ctx, sk)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	if iteration < cfg.MaxIterations {
		_ = rep.RenderIterationBanner(stdout, iteration)
	}

	outcome, err := optimizer.Review(ctx, sk)
	if err != nil {
		_ = rep.RenderFailure(stdout, err)
		return exitCode(nil, err)
	}

	if err := rep.Render(stdout, outcome.Scorecard, outcome.Verdict); err != nil {
		logger.Warn("failed to write report", zap.Error(err))
	}
	_ = rep.RenderTrend(stdout, outcome.Previous, outcome.Scorecard)
	_ = rep.RenderClosingNote(stdout)

	return exitCode(outcome, nil)
}

func parseArgs(args []string, output io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("skill-optimizer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&opts.maxIterations, "max-iterations", 0, "iteration budget for this skill (overrides MAX_ITERATIONS)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "review command timeout, e.g. 90s (overrides REVIEW_TIMEOUT_SEC)")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: skill-optimizer [flags] <skill-path>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("exactly one skill path is required")
	}
	opts.skillPath = fs.Arg(0)

	if opts.maxIterations < 0 {
		return opts, domain.ErrInvalidMaxIterations
	}
	if opts.timeout < 0 {
		return opts, domain.ErrInvalidTimeout
	}
	return opts, nil
}

// applyOverrides кладет непустые флаги поверх env-конфига
func applyOverrides(cfg *config.Config, opts options) error {
	if opts.maxIterations > 0 {
		cfg.MaxIterations = opts.maxIterations
	}
	if opts.timeout > 0 {
		cfg.Review.Timeout = opts.timeout
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg.Validate()
}

func exitCode(outcome *service.ReviewOutcome, err error) int {
	switch {
	case errors.Is(err, domain.ErrIterationBudgetExhausted):
		return exitBudgetExhausted
	case err != nil:
		return exitFailure
	case outcome != nil && outcome.Verdict.OverallPass:
		return exitPass
	default:
		return exitCriteriaNotMet
	}
}

func pushMetrics(m *metrics.Metrics, cfg config.MetricsConfig, skillName string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	if err := m.Push(ctx, cfg.PushgatewayURL, cfg.Job, skillName); err != nil {
		logger.Warn("failed to push metrics", zap.String("url", cfg.PushgatewayURL), zap.Error(err))
		return
	}
	logger.Debug("metrics pushed", zap.String("url", cfg.PushgatewayURL))
}
