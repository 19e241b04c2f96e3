// Package compose drives the external container-orchestration layer.
// It is a thin wrapper over the docker CLI: all lifecycle state lives
// in docker itself, datalab only issues commands and interprets exits.
package compose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/maestria-datos/datalab/internal/logger"
)

// ErrPrerequisiteMissing indicates the docker CLI or its compose
// subsystem is not installed. Nothing has been mutated when this is
// returned; the whole run aborts.
var ErrPrerequisiteMissing = errors.New("prerequisite missing")

// Runner executes external commands. The orchestrator goes through a
// Runner so tests can fake docker entirely.
type Runner interface {
	// Run executes the command streaming its output to the terminal.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes the command and returns its combined output.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec in the given working directory.
type ExecRunner struct {
	// Dir is the working directory for every command.
	Dir string
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Orchestrator issues docker compose commands for one fixed project.
type Orchestrator struct {
	runner  Runner
	file    string
	project string
}

// New creates an Orchestrator for the given compose file and project name.
func New(runner Runner, composeFile, project string) *Orchestrator {
	return &Orchestrator{runner: runner, file: composeFile, project: project}
}

// composeArgs prefixes args with the compose subcommand, file, and
// project selection.
func (o *Orchestrator) composeArgs(args ...string) []string {
	base := []string{"compose", "-f", o.file, "-p", o.project}
	return append(base, args...)
}

// CheckPrerequisites verifies the docker CLI and its compose subsystem
// are available. It must be called before any mutating operation; a
// failure means the environment cannot run the stack at all.
func (o *Orchestrator) CheckPrerequisites(ctx context.Context) error {
	if _, err := o.runner.Output(ctx, "docker", "--version"); err != nil {
		return fmt.Errorf("%w: docker CLI not found: %v", ErrPrerequisiteMissing, err)
	}
	if _, err := o.runner.Output(ctx, "docker", "compose", "version"); err != nil {
		return fmt.Errorf("%w: docker compose subsystem not available: %v", ErrPrerequisiteMissing, err)
	}
	return nil
}

// Down tears down a previously running instance of the stack, including
// orphaned containers. Failures are swallowed: "nothing to tear down"
// is the common case on a fresh machine. This ignore-failure policy is
// limited to this call site; cleanup uses DownVolumes which reports
// errors to its caller.
func (o *Orchestrator) Down(ctx context.Context) {
	if err := o.runner.Run(ctx, "docker", o.composeArgs("down", "--remove-orphans")...); err != nil {
		logger.Debug("teardown before start failed, continuing", "error", err)
	}
}

// Pull fetches all images required by the stack. A missing image blocks
// startup, so failure here is fatal.
func (o *Orchestrator) Pull(ctx context.Context) error {
	if err := o.runner.Run(ctx, "docker", o.composeArgs("pull")...); err != nil {
		return fmt.Errorf("image pull failed: %w", err)
	}
	return nil
}

// UpDetached starts all services in detached mode. It returns as soon
// as docker accepts the request; services become ready asynchronously
// and the caller must poll readiness separately.
func (o *Orchestrator) UpDetached(ctx context.Context) error {
	if err := o.runner.Run(ctx, "docker", o.composeArgs("up", "-d")...); err != nil {
		return fmt.Errorf("stack start failed: %w", err)
	}
	return nil
}

// Exec runs a command inside a running service container.
func (o *Orchestrator) Exec(ctx context.Context, service string, cmd ...string) (string, error) {
	args := o.composeArgs(append([]string{"exec", "-T", service}, cmd...)...)
	return o.runner.Output(ctx, "docker", args...)
}

// PS returns the compose service status listing.
func (o *Orchestrator) PS(ctx context.Context) (string, error) {
	return o.runner.Output(ctx, "docker", o.composeArgs("ps")...)
}

// DownVolumes stops and removes all services together with their
// persistent volumes and orphaned containers.
func (o *Orchestrator) DownVolumes(ctx context.Context) error {
	return o.runner.Run(ctx, "docker", o.composeArgs("down", "--volumes", "--remove-orphans")...)
}

// PruneImages removes images no longer referenced by any container.
func (o *Orchestrator) PruneImages(ctx context.Context) error {
	return o.runner.Run(ctx, "docker", "image", "prune", "-f")
}
