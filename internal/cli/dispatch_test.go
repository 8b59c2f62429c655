package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskdash/internal/cli"
	"taskdash/internal/commands"
	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService
// and records the config it was called with.
func testFactory(svc *testutil.FakeService, got **config.Config) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		if got != nil {
			*got = cfg
		}
		return svc, nil
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TASKDASH_API_BASE", "")
	t.Setenv("VITE_API_BASE", "")
	var out, errOut bytes.Buffer
	code = d.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, d, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, d, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	stdout, stderr, code := run(t, d, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	stdout, stderr, code := run(t, d, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskdash 0.1.0\n" {
		t.Errorf("expected 'taskdash 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, d, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, d, "list", "--status")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -status\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_InvalidTimeout(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, d, "list", "--timeout", "soon")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid value \"soon\" for flag -timeout") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_NoArgsRunsList(t *testing.T) {
	svc := testutil.NewFakeService(service.Task{Title: "Write report", Status: service.StatusNew})
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, nil))

	stdout, _, code := run(t, d)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "Total: 1  ") || !strings.Contains(stdout, "Write report") {
		t.Errorf("expected stats and table, got:\n%s", stdout)
	}
}

func TestDispatcher_CommonFlags(t *testing.T) {
	var cfg *config.Config
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), &cfg))
	in := strings.NewReader("")
	d.SetInput(in)

	_, _, code := run(t, d, "statuses", "--backend", "http://tasks.test:8080", "--timeout", "5s", "--quiet", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if cfg == nil {
		t.Fatal("expected the factory to be called")
	}
	if cfg.BackendURL != "http://tasks.test:8080" {
		t.Errorf("expected backend override, got %q", cfg.BackendURL)
	}
	if cfg.Timeout.String() != "5s" {
		t.Errorf("expected 5s timeout, got %v", cfg.Timeout)
	}
	if !cfg.Quiet {
		t.Error("expected quiet")
	}
	if cfg.Stdin != in {
		t.Error("expected the dispatcher input to reach the config")
	}
}

func TestDispatcher_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := []byte("TASKDASH_BACKEND_URL=http://from-env-file:4000\n")
	if err := os.WriteFile(filepath.Join(dir, config.EnvFile), env, 0600); err != nil {
		t.Fatal(err)
	}
	// .env never overrides the environment, so the variable must be unset.
	t.Setenv("TASKDASH_BACKEND_URL", "")
	os.Unsetenv("TASKDASH_BACKEND_URL")

	var cfg *config.Config
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), &cfg))

	_, stderr, code := run(t, d, "statuses", "--config", dir)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if cfg.BackendURL != "http://from-env-file:4000" {
		t.Errorf("expected backend from .env, got %q", cfg.BackendURL)
	}
}

func TestDispatcher_BackendNotNeeded(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		t.Error("factory should not be called for version")
		return nil, nil
	})

	_, _, code := run(t, d, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, errors.New("invalid backend url: \"::\"")
	})

	_, stderr, code := run(t, d, "list")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	expected := "error: config error: invalid backend url: \"::\"\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_InvalidTimeoutEnv(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))
	t.Setenv("TASKDASH_TIMEOUT", "forever")

	_, stderr, code := run(t, d, "version")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.HasPrefix(stderr, "error: config error: invalid TASKDASH_TIMEOUT") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DefaultFactory(t *testing.T) {
	backend := testutil.NewFakeBackend(t, service.Task{Title: "Ship release", Status: service.StatusCompleted})
	d := cli.NewDispatcher(commands.DefaultRegistry, nil)

	stdout, stderr, code := run(t, d, "show", "--backend", backend.URL(), "1")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(stdout, "Title:       Ship release\n") {
		t.Errorf("unexpected stdout:\n%s", stdout)
	}
	if lines := backend.RequestLines(); len(lines) != 1 || lines[0] != "GET /api/tasks/1" {
		t.Errorf("unexpected requests %v", lines)
	}
}
