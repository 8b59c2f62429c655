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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "taskdash rm [--yes] <id>" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, _, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, code, ok := lookupTask(ctx, svc, id, errOut)
	if !ok {
		return code
	}

	confirm := func(t service.Task) bool {
		if c.yes {
			return true
		}
		return confirmPrompt(cfg.Stdin, errOut, fmt.Sprintf("Delete task \"%s\"?", t.Title))
	}

	vm := viewmodel.New(svc, viewmodel.WithClock(clock))
	deleted, err := vm.Delete(ctx, task, confirm)
	if err != nil {
		return reportError(errOut, id, err)
	}

	if !cfg.Quiet {
		if deleted {
			fmt.Fprintln(out, vm.State().Message)
		} else {
			fmt.Fprintln(out, "cancelled")
		}
	}
	return exitcode.Success
}
