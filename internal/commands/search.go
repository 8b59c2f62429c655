package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
	"taskdash/internal/service"
)

func init() {
	Register(&SearchCmd{})
}

// SearchCmd implements the search command.
type SearchCmd struct {
	title  string
	status string
	due    string
}

func (c *SearchCmd) Name() string      { return "search" }
func (c *SearchCmd) Aliases() []string { return []string{"find"} }
func (c *SearchCmd) Synopsis() string  { return "Search tasks on the backend" }
func (c *SearchCmd) Usage() string {
	return "taskdash search [--title <T>] [--status <S>] [--due <YYYY-MM-DD>] [title...]"
}
func (c *SearchCmd) NeedsBackend() bool { return true }

func (c *SearchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	filters := service.SearchFilters{Title: strings.TrimSpace(c.title)}
	if filters.Title == "" {
		filters.Title = strings.TrimSpace(strings.Join(args, " "))
	}
	if c.status != "" {
		filters.Status = normalizeStatus(c.status)
	}
	if due := strings.TrimSpace(c.due); due != "" {
		if _, ok := (service.Task{DueDate: due}).Due(); !ok || len(due) != len("2006-01-02") {
			fmt.Fprintf(errOut, "error: invalid due date: %s (use YYYY-MM-DD)\n", due)
			return exitcode.UserError
		}
		filters.DueDate = due
	}

	res, err := svc.SearchTasks(ctx, filters)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if res.Degraded() && !cfg.Quiet {
		fmt.Fprintf(errOut, "note: server search failed, filtered locally: %v\n", res.Cause)
	}
	if len(res.Tasks) == 0 && cfg.Quiet {
		return exitcode.Success
	}
	output.FormatTable(out, res.Tasks, clock())
	return exitcode.Success
}
