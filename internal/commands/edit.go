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
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the flags given are changed.
type EditCmd struct {
	title  optionalString
	desc   optionalString
	status optionalString
	due    optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskdash edit <id> [--title <T>] [--desc <D>] [--status <S>] [--due <DATE>]"
}
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, _, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.title.set && !c.desc.set && !c.status.set && !c.due.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --desc, --status or --due)")
		return exitcode.UserError
	}

	task, code, ok := lookupTask(ctx, svc, id, errOut)
	if !ok {
		return code
	}

	if c.title.set {
		task.Title = c.title.value
	}
	if c.desc.set {
		task.Description = c.desc.value
	}
	if c.status.set {
		task.Status = normalizeStatus(c.status.value)
		if !checkStatus(ctx, viewmodel.New(svc), task.Status, errOut) {
			return exitcode.UserError
		}
	}
	if c.due.set {
		due, ok := checkDueDate(c.due.value, errOut)
		if !ok {
			return exitcode.UserError
		}
		task.DueDate = due
	}

	if _, err := svc.UpdateTask(ctx, task); err != nil {
		return reportError(errOut, id, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
