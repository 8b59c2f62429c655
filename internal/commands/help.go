package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskdash help [command]" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		text, ok := DefaultRegistry.Describe(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprint(out, text)
		return exitcode.Success
	}

	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(out, "  %-9s %s\n", cmd.Name(), cmd.Synopsis())
	}
	return exitcode.Success
}

const helpText = `Usage:
  taskdash                                   Show statistics and all tasks
  taskdash list [common flags] [--status <S>] [--search <Q>] [--sort <F>] [--desc]
  taskdash show [common flags] <id>
  taskdash add [common flags] [--desc <D>] [--status <S>] [--due <DATE>] <title...>
  taskdash create [common flags] [--desc <D>] [--status <S>] [--due <DATE>] <title...>
  taskdash edit [common flags] <id> [--title <T>] [--desc <D>] [--status <S>] [--due <DATE>]
  taskdash status [common flags] <id> <STATUS>
  taskdash done [common flags] <id>...
  taskdash rm [common flags] [--yes] <id>
  taskdash statuses [common flags]
  taskdash search [common flags] [--title <T>] [--status <S>] [--due <YYYY-MM-DD>]
  taskdash smoke [common flags] [--frontend <url>]
  taskdash tui [common flags]
  taskdash help [command]
  taskdash version

Sort fields: dueDate (default), title, description, status, id, tasknum

Common flags:
  --config <dir>      Override config directory (.env is read from it)
  --backend <url>     Backend URL (default http://localhost:4000)
  --timeout <dur>     Per-request timeout, e.g. 5s (default none)
  --quiet             Suppress informational output
  --debug             Print debug logs to stderr

Environment:
  TASKDASH_BACKEND_URL, TASKDASH_API_BASE, TASKDASH_FRONTEND_URL,
  TASKDASH_API_TOKEN, TASKDASH_TIMEOUT
`
