package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	crateserver "github.com/Apurer/pet-crate-sizer/go"
	crateworkflows "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/workflows"
	cratesports "github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
	platformobservability "github.com/Apurer/pet-crate-sizer/internal/platform/observability"
)

// Run boots the crate sizing HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "crate-sizer-api"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	crateService, cleanup := BuildService(ctx, cfg, instruments)
	defer cleanup()

	var crateWorkflows cratesports.WorkflowOrchestrator = crateworkflows.NewInlineAssessmentWorkflows(crateService)
	if temporalClient, err := ConnectTemporal(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, recording assessments inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		crateWorkflows = crateworkflows.NewTemporalAssessmentWorkflows(temporalClient, cfg.Audit.Enabled())
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := crateserver.ApiHandleFunctions{
		CrateAPI:     crateserver.NewCrateAPI(crateService, crateWorkflows),
		AuditLimiter: crateserver.NewRateLimiter(cfg.Audit.RPS, cfg.Audit.Burst),
	}
	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := crateserver.NewRouterWithGinEngine(engine, handlers)
	addr := ":" + cfg.Port
	logger.Info("crate sizer API listening", slog.String("addr", addr), slog.String("formula", string(cfg.Formula)))
	if err := router.Run(addr); err != nil {
		logger.Error("crate sizer API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}
