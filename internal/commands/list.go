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
	"taskdash/internal/viewmodel"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskdash` (no args) and `taskdash list`.
type ListCmd struct {
	status string
	search string
	sort   string
	desc   bool
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "Show task statistics and the task table" }
func (c *ListCmd) Usage() string      { return "taskdash list [--status <S>] [--search <Q>] [--sort <F>] [--desc]" }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", viewmodel.AllStatuses, "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.sort, "sort", string(viewmodel.SortDueDate), "")
	fs.BoolVar(&c.desc, "desc", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	field, err := viewmodel.ParseSortField(c.sort)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	dir := viewmodel.Asc
	if c.desc {
		dir = viewmodel.Desc
	}

	vm := viewmodel.New(svc, viewmodel.WithClock(clock), viewmodel.WithSort(viewmodel.Sort{Field: field, Direction: dir}))
	if c.status != "" && c.status != viewmodel.AllStatuses {
		status := normalizeStatus(c.status)
		if !checkStatus(ctx, vm, status, errOut) {
			return exitcode.UserError
		}
		vm.SetStatusFilter(string(status))
	}
	vm.SetSearch(c.search)

	if err := vm.Load(ctx); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	tasks := vm.View()
	if len(tasks) == 0 && cfg.Quiet {
		return exitcode.Success
	}
	output.FormatStats(out, vm.Stats())
	fmt.Fprintln(out)
	output.FormatTable(out, tasks, vm.Now())
	return exitcode.Success
}
