package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/viewmodel"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// taskFields are the flags shared by add and create.
type taskFields struct {
	desc   string
	status string
	due    string
}

func (f *taskFields) register(fs *flag.FlagSet) {
	fs.StringVar(&f.desc, "desc", "", "")
	fs.StringVar(&f.desc, "d", "", "")
	fs.StringVar(&f.status, "status", string(service.StatusNew), "")
	fs.StringVar(&f.due, "due", "", "")
}

// AddCmd implements the add command.
type AddCmd struct {
	fields taskFields
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return nil }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "taskdash add [--desc <D>] [--status <S>] [--due <DATE>] <title...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs)
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, svc, c.fields, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	fields taskFields
}

func (c *CreateCmd) Name() string       { return "create" }
func (c *CreateCmd) Aliases() []string  { return nil }
func (c *CreateCmd) Synopsis() string   { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string      { return "taskdash create [--desc <D>] [--status <S>] [--due <DATE>] <title...>" }
func (c *CreateCmd) NeedsBackend() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs)
}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, svc, c.fields, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, cfg *config.Config, svc service.Service, f taskFields, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	status := normalizeStatus(f.status)
	if !checkStatus(ctx, viewmodel.New(svc), status, errOut) {
		return exitcode.UserError
	}
	due, ok := checkDueDate(f.due, errOut)
	if !ok {
		return exitcode.UserError
	}

	created, err := svc.CreateTask(ctx, service.Task{
		Title:       title,
		Description: f.desc,
		Status:      status,
		DueDate:     due,
	})
	if err != nil {
		return reportError(errOut, 0, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "created task %d\n", created.ID)
	}
	return exitcode.Success
}
