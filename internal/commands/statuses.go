package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
	"taskdash/internal/service"
)

func init() {
	Register(&StatusesCmd{})
}

// StatusesCmd implements the statuses command.
type StatusesCmd struct{}

func (c *StatusesCmd) Name() string       { return "statuses" }
func (c *StatusesCmd) Aliases() []string  { return nil }
func (c *StatusesCmd) Synopsis() string   { return "List the statuses the backend accepts" }
func (c *StatusesCmd) Usage() string      { return "taskdash statuses" }
func (c *StatusesCmd) NeedsBackend() bool { return true }

func (c *StatusesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusesCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	statuses, err := svc.ListStatuses(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	output.FormatStatuses(out, statuses)
	return exitcode.Success
}
