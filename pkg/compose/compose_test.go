package compose

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeRunner records commands and fails those matching failOn.
type fakeRunner struct {
	commands []string
	failOn   string
}

func (f *fakeRunner) record(name string, args []string) string {
	cmd := name + " " + strings.Join(args, " ")
	f.commands = append(f.commands, cmd)
	return cmd
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	cmd := f.record(name, args)
	if f.failOn != "" && strings.Contains(cmd, f.failOn) {
		return errors.New("exit status 1")
	}
	return nil
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	return "", f.Run(ctx, name, args...)
}

func newTestOrchestrator(failOn string) (*Orchestrator, *fakeRunner) {
	runner := &fakeRunner{failOn: failOn}
	return New(runner, "docker-compose.yml", "datalab"), runner
}

func TestCheckPrerequisites_MissingDocker(t *testing.T) {
	o, _ := newTestOrchestrator("--version")

	err := o.CheckPrerequisites(context.Background())
	if !errors.Is(err, ErrPrerequisiteMissing) {
		t.Fatalf("expected ErrPrerequisiteMissing, got %v", err)
	}
}

func TestCheckPrerequisites_MissingComposeSubsystem(t *testing.T) {
	o, _ := newTestOrchestrator("compose version")

	err := o.CheckPrerequisites(context.Background())
	if !errors.Is(err, ErrPrerequisiteMissing) {
		t.Fatalf("expected ErrPrerequisiteMissing, got %v", err)
	}
}

func TestDown_SwallowsFailure(t *testing.T) {
	o, runner := newTestOrchestrator("down")

	// Must not panic or propagate; teardown-before-start is best effort.
	o.Down(context.Background())

	if len(runner.commands) != 1 {
		t.Fatalf("expected one command, got %v", runner.commands)
	}
	want := "docker compose -f docker-compose.yml -p datalab down --remove-orphans"
	if runner.commands[0] != want {
		t.Errorf("unexpected command %q", runner.commands[0])
	}
}

func TestPull_PropagatesFailure(t *testing.T) {
	o, _ := newTestOrchestrator("pull")

	if err := o.Pull(context.Background()); err == nil {
		t.Fatal("expected pull failure to propagate")
	}
}

func TestUpDetached_CommandShape(t *testing.T) {
	o, runner := newTestOrchestrator("")

	if err := o.UpDetached(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "docker compose -f docker-compose.yml -p datalab up -d"
	if runner.commands[0] != want {
		t.Errorf("unexpected command %q", runner.commands[0])
	}
}

func TestExec_TargetsService(t *testing.T) {
	o, runner := newTestOrchestrator("")

	if _, err := o.Exec(context.Background(), "mysql", "mysqladmin", "ping"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "docker compose -f docker-compose.yml -p datalab exec -T mysql mysqladmin ping"
	if runner.commands[0] != want {
		t.Errorf("unexpected command %q", runner.commands[0])
	}
}

func TestDownVolumes_ReportsFailure(t *testing.T) {
	o, _ := newTestOrchestrator("--volumes")

	if err := o.DownVolumes(context.Background()); err == nil {
		t.Fatal("expected error from volume teardown")
	}
}

func TestPruneImages_BypassesComposeProject(t *testing.T) {
	o, runner := newTestOrchestrator("")

	if err := o.PruneImages(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.commands[0] != "docker image prune -f" {
		t.Errorf("unexpected command %q", runner.commands[0])
	}
}
