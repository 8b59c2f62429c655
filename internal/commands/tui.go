package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/tui"
	"taskdash/internal/viewmodel"
)

// TUILogFile receives debug logs while the dashboard owns the terminal.
const TUILogFile = "tui.log"

func init() {
	Register(&TUICmd{})
}

// TUICmd implements the tui command.
type TUICmd struct{}

func (c *TUICmd) Name() string       { return "tui" }
func (c *TUICmd) Aliases() []string  { return []string{"dash"} }
func (c *TUICmd) Synopsis() string   { return "Open the interactive dashboard" }
func (c *TUICmd) Usage() string      { return "taskdash tui" }
func (c *TUICmd) NeedsBackend() bool { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	restore, err := redirectLogs(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}
	defer restore()

	in := cfg.Stdin
	if in == nil {
		in = os.Stdin
	}

	vm := viewmodel.New(svc, viewmodel.WithClock(clock))
	if err := tui.Run(ctx, vm, in, out); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// redirectLogs keeps log lines off the terminal: they go to TUILogFile in
// the config dir with --debug and are dropped otherwise.
func redirectLogs(cfg *config.Config) (func(), error) {
	prev := log.Logger
	restore := func() { log.Logger = prev }

	if !cfg.Debug {
		log.Logger = zerolog.Nop()
		return restore, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.Dir, TUILogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: f, NoColor: true}).
		Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return func() {
		restore()
		f.Close()
	}, nil
}
