package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/finagent/expense-pipeline/internal/config"
	"github.com/finagent/expense-pipeline/internal/core/domain"
	"github.com/finagent/expense-pipeline/internal/core/ports"
	"github.com/finagent/expense-pipeline/internal/core/usecase"
	"github.com/finagent/expense-pipeline/internal/infrastructure/classifier/hfinference"
	"github.com/finagent/expense-pipeline/internal/infrastructure/fraud/riskapi"
	"github.com/finagent/expense-pipeline/internal/infrastructure/notify/webhook"
	"github.com/finagent/expense-pipeline/internal/infrastructure/queue/nats"
	"github.com/finagent/expense-pipeline/internal/infrastructure/repository/postgres"
	"github.com/finagent/expense-pipeline/internal/infrastructure/resilience"
	"github.com/finagent/expense-pipeline/internal/infrastructure/simulated"
	"github.com/finagent/expense-pipeline/internal/infrastructure/storage/localfs"
	"github.com/finagent/expense-pipeline/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue      *nats.Queue
	Storage    ports.ArtifactStorage
	Subs       ports.SubmissionReader
	Alerts     ports.AlertStore
	Forecasts  ports.ForecastRepository
	ProcessUC  ports.ExpenseProcessor
	ForecastUC ports.ForecastUpdater

	APIMetrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSubmissionRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	ledger := postgres.NewLedgerRepository(db)
	reviews := postgres.NewReviewRepository(db)
	alerts := postgres.NewAlertRepository(db)
	forecasts := postgres.NewForecastRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init artifact storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init forecast queue: %w", err)
	}

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load decision policy: %w", err)
	}

	collaboratorTimeout := time.Duration(cfg.CollaboratorTimeoutSeconds) * time.Second
	var classifier ports.ExpenseClassifier
	var scorer ports.FraudScorer
	if cfg.SimulateCollaborators {
		classifier = simulated.NewClassifier()
		scorer = simulated.NewScorer()
	} else {
		classifier = hfinference.New(cfg.ClassifierURL, cfg.ClassifierModel, cfg.ClassifierToken, collaboratorTimeout, executor)
		scorer = riskapi.New(cfg.FraudScorerURL, collaboratorTimeout, executor)
	}

	var notifier ports.Notifier = nopNotifier{}
	if cfg.NotifyWebhookURL != "" {
		notifier = webhook.New(cfg.NotifyWebhookURL, collaboratorTimeout)
	}
	apiMetrics := metrics.NewHTTPServerMetrics("api")

	processUC := usecase.NewProcessSubmissionUseCase(
		repo, classifier, scorer, ledger, queue, notifier, reviews, alerts, apiMetrics, policy,
	)
	forecastUC := usecase.NewForecastUpdateUseCase(forecasts)

	return &App{
		Config: cfg,

		Queue:      queue,
		Storage:    storage,
		Subs:       repo,
		Alerts:     alerts,
		Forecasts:  forecasts,
		ProcessUC:  processUC,
		ForecastUC: forecastUC,

		APIMetrics: apiMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// nopNotifier is used when no webhook endpoint is configured.
type nopNotifier struct{}

func (nopNotifier) NotifyHold(context.Context, domain.FraudAlert) error { return nil }
