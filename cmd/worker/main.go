package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-crate-sizer/internal/app/api"
	platformobservability "github.com/Apurer/pet-crate-sizer/internal/platform/observability"
	crateactivities "github.com/Apurer/pet-crate-sizer/internal/platform/temporal/activities/crates"
	crateworkflows "github.com/Apurer/pet-crate-sizer/internal/platform/temporal/workflows/crates"
)

func main() {
	ctx := context.Background()
	const serviceName = "crate-sizer-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	crateService, cleanup := api.BuildService(ctx, cfg, instruments)
	defer cleanup()
	activities := crateactivities.NewActivities(crateService)

	// The worker cannot fall back to inline execution.
	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporal(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, crateworkflows.AssessmentTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(crateworkflows.AssessmentWorkflow, workflow.RegisterOptions{Name: crateworkflows.AssessmentWorkflowName})
	w.RegisterActivityWithOptions(activities.RecordAssessment, activity.RegisterOptions{Name: crateactivities.RecordAssessmentActivityName})
	w.RegisterActivityWithOptions(activities.AuditAssessment, activity.RegisterOptions{Name: crateactivities.AuditAssessmentActivityName})

	logger.Info("worker listening", slog.String("taskQueue", crateworkflows.AssessmentTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
