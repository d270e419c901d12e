package api

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	"github.com/Apurer/pet-crate-sizer/internal/clients/http/crateaudit"
	crateauditor "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/external/auditor"
	cratesmemory "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/memory"
	cratesobs "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/observability"
	cratespostgres "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/persistence/postgres"
	cratesapp "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	cratesports "github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
	"github.com/Apurer/pet-crate-sizer/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-crate-sizer/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-crate-sizer/internal/platform/postgres"
)

type repositories struct {
	catalogs    cratesports.CatalogRepository
	assessments cratesports.AssessmentRepository
	idempotency cratesports.IdempotencyStore
}

// BuildService wires the crates service with postgres or in-memory storage, the advisory
// auditor, and the observability decorator. The returned cleanup closes what was opened.
func BuildService(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (cratesports.Service, func()) {
	logger := effectiveLogger(instruments)
	repos, closeRepos := buildRepositories(ctx, cfg, logger)
	auditor, closeAuditor := buildAuditor(cfg, logger)

	core := cratesapp.NewService(
		repos.catalogs,
		repos.assessments,
		cratesapp.WithIdempotencyStore(repos.idempotency),
		cratesapp.WithAuditor(auditor),
		cratesapp.WithEventPublisher(cratesobs.NewEventLogger(logger)),
		cratesapp.WithDefaultFormula(cfg.Formula),
	)
	opts := []cratesobs.Option{cratesobs.WithLogger(logger)}
	if instruments != nil {
		opts = append(opts,
			cratesobs.WithTracer(instruments.Tracer("internal.crates.application")),
			cratesobs.WithMeter(instruments.Meter("internal.crates.application")),
		)
	}
	return cratesobs.New(core, opts...), func() {
		closeAuditor()
		closeRepos()
	}
}

func buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (repositories, func()) {
	memoryRepos := repositories{
		catalogs:    cratesmemory.NewCatalogRepository(nil),
		assessments: cratesmemory.NewAssessmentRepository(),
		idempotency: cratesmemory.NewIdempotencyStore(),
	}
	db, cleanup := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return memoryRepos, cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate crate tables, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return memoryRepos, func() {}
	}
	catalogs := cratespostgres.NewCatalogRepository(db)
	if err := catalogs.EnsureSeeded(ctx, domain.DefaultCatalog()); err != nil {
		logger.Warn("failed to seed crate catalog, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return memoryRepos, func() {}
	}
	logger.Info("crate repositories configured with postgres")
	return repositories{
		catalogs:    catalogs,
		assessments: cratespostgres.NewAssessmentRepository(db),
		idempotency: cratespostgres.NewIdempotencyStore(db),
	}, cleanup
}

func buildAuditor(cfg Config, logger *slog.Logger) (cratesports.Auditor, func()) {
	if !cfg.Audit.Enabled() {
		logger.Warn("CRATE_AUDIT_URL not set, advisory crate audits disabled")
		return crateauditor.Noop{}, func() {}
	}
	auditClient, err := crateaudit.NewClient(cfg.Audit.URL, crateaudit.WithTimeout(cfg.Audit.Timeout))
	if err != nil {
		logger.Warn("failed to configure crate audit client, advisory crate audits disabled", slog.String("error", err.Error()))
		return crateauditor.Noop{}, func() {}
	}
	logger.Info("advisory crate audits enabled", slog.String("url", cfg.Audit.URL))
	return crateauditor.New(auditClient), func() { _ = auditClient.Close() }
}

// ConnectTemporal dials Temporal with the OpenTelemetry tracing interceptor.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
