package provision

import (
	"context"
	"fmt"

	"github.com/maestria-datos/datalab/internal/logger"
	"github.com/maestria-datos/datalab/pkg/config"
	"github.com/maestria-datos/datalab/pkg/readiness"
	"github.com/maestria-datos/datalab/pkg/stack"
)

// Orchestrator is the slice of the compose layer the pipeline drives.
type Orchestrator interface {
	CheckPrerequisites(ctx context.Context) error
	Down(ctx context.Context)
	Pull(ctx context.Context) error
	UpDetached(ctx context.Context) error
}

// Pipeline is the full provisioning sequence. It is strictly
// sequential: every stage blocks until it finishes or fails, and a
// fatal stage stops the run. Each stage is idempotent, so re-running
// the pipeline after an interrupted run converges without manual
// repair.
type Pipeline struct {
	Settings     *config.Settings
	Orchestrator Orchestrator

	// WaitReady polls the database readiness predicate.
	WaitReady func(ctx context.Context) (readiness.Result, error)

	// ReportReady, when set, presents the running services to the user.
	// It runs once the database is ready and before dataset acquisition,
	// so the report is shown even when the dataset step later fails.
	ReportReady func()

	// AcquireDataset places the sample dataset into the database
	// initialization directory.
	AcquireDataset func(ctx context.Context) error
}

// Run executes the provisioning pipeline:
// prerequisites, directories, environment file, teardown-if-running,
// image pull, detached start, readiness poll, service report, dataset
// acquisition.
func (p *Pipeline) Run(ctx context.Context) error {
	// Verified before any mutation; a missing orchestration layer
	// aborts before the filesystem is touched.
	if err := p.Orchestrator.CheckPrerequisites(ctx); err != nil {
		return err
	}

	logger.Info("provisioning directories", "root", p.Settings.ProjectRoot)
	if err := EnsureDirectories(p.Settings.ProjectRoot, stack.Directories()); err != nil {
		return err
	}

	if err := EnsureEnvFile(p.Settings.EnvFilePath(), p.Settings.EnvTemplatePath()); err != nil {
		return err
	}

	logger.Info("tearing down any previous stack instance")
	p.Orchestrator.Down(ctx)

	logger.Info("pulling service images")
	if err := p.Orchestrator.Pull(ctx); err != nil {
		return err
	}

	logger.Info("starting services in detached mode")
	if err := p.Orchestrator.UpDetached(ctx); err != nil {
		return err
	}

	logger.Info("waiting for database readiness",
		"max_attempts", p.Settings.Readiness.MaxAttempts,
		"interval", p.Settings.Readiness.Interval)
	res, err := p.WaitReady(ctx)
	if err != nil {
		return fmt.Errorf("database readiness check failed: %w", err)
	}
	logger.Info("database is ready", "attempts", res.Attempts, "elapsed", res.Elapsed)

	if p.ReportReady != nil {
		p.ReportReady()
	}

	if err := p.AcquireDataset(ctx); err != nil {
		return err
	}

	return nil
}
