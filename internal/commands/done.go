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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command, a shortcut for status <id> COMPLETED.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string      { return "taskdash done <id>..." }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintf(errOut, "error: %v\n", ErrTaskIDRequired)
		return exitcode.UserError
	}

	// Validate every id before changing anything.
	ids := make([]int64, 0, len(args))
	for rest := args; len(rest) > 0; {
		id, next, err := ParseTaskID(rest)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		ids = append(ids, id)
		rest = next
	}

	vm := viewmodel.New(svc, viewmodel.WithClock(clock))
	for _, id := range ids {
		if err := vm.ChangeStatus(ctx, service.Task{ID: id}, service.StatusCompleted); err != nil {
			return reportError(errOut, id, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
