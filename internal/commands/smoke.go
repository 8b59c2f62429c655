package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/smoke"
)

func init() {
	Register(&SmokeCmd{})
}

// SmokeCmd implements the smoke command.
type SmokeCmd struct {
	frontend string

	// Client is used for the probes when set (for testing).
	Client *http.Client
}

func (c *SmokeCmd) Name() string       { return "smoke" }
func (c *SmokeCmd) Aliases() []string  { return nil }
func (c *SmokeCmd) Synopsis() string   { return "Check that the frontend and backend respond" }
func (c *SmokeCmd) Usage() string      { return "taskdash smoke [--frontend <url>]" }
func (c *SmokeCmd) NeedsBackend() bool { return false }

func (c *SmokeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.frontend, "frontend", "", "")
}

func (c *SmokeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	apiURL, err := cfg.APIURL()
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.ConfigError
	}
	frontend := c.frontend
	if frontend == "" {
		frontend = cfg.FrontendURL
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "Running HTTP smoke tests...")
		fmt.Fprintf(out, "Frontend URL: %s\n", frontend)
		fmt.Fprintf(out, "Backend URL: %s\n", cfg.BackendURL)
	}

	runner := &smoke.Runner{Client: c.Client, Timeout: cfg.Timeout}
	results := runner.Run(ctx, smoke.Checks(smoke.Targets{
		FrontendURL: frontend,
		BackendURL:  cfg.BackendURL,
		APIURL:      apiURL,
	}))

	if !smoke.Report(out, results) {
		return exitcode.BackendError
	}
	return exitcode.Success
}
