package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/viewmodel"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string       { return "status" }
func (c *StatusCmd) Aliases() []string  { return nil }
func (c *StatusCmd) Synopsis() string   { return "Change the status of a task" }
func (c *StatusCmd) Usage() string      { return "taskdash status <id> <STATUS>" }
func (c *StatusCmd) NeedsBackend() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, rest, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if len(rest) == 0 {
		fmt.Fprintln(errOut, "error: status required")
		return exitcode.UserError
	}
	if len(rest) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[1])
		return exitcode.UserError
	}

	vm := viewmodel.New(svc, viewmodel.WithClock(clock))
	status := normalizeStatus(rest[0])
	if !checkStatus(ctx, vm, status, errOut) {
		return exitcode.UserError
	}

	if err := vm.ChangeStatus(ctx, service.Task{ID: id}, status); err != nil {
		return reportError(errOut, id, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, vm.State().Message)
	}
	return exitcode.Success
}
