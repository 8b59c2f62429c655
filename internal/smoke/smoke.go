// Package smoke probes a running deployment over HTTP: the frontend root,
// the task list endpoint and the backend health endpoints.
package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// DefaultTimeout bounds each probe when no deadline is configured.
const DefaultTimeout = 10 * time.Second

// previewLen is how much of the API response is echoed on success.
const previewLen = 50

// Kind selects how a probe response is judged.
type Kind int

const (
	// Page passes on any status below 500.
	Page Kind = iota
	// Health passes on 2xx.
	Health
	// API passes on 2xx with a JSON body.
	API
)

// Check is one probe.
type Check struct {
	Name string
	URL  string
	Kind Kind
}

// Result is the outcome of one probe.
type Result struct {
	Check
	Status     int
	StatusText string
	// Preview is the start of the body for API checks.
	Preview string
	Err     error
}

// OK reports whether the probe passed.
func (r Result) OK() bool {
	return r.Err == nil
}

// Targets are the URLs probed.
type Targets struct {
	FrontendURL string
	BackendURL  string
	// APIURL is the task API root, e.g. http://localhost:4000/api.
	APIURL string
}

// Checks returns the standard probes for t.
func Checks(t Targets) []Check {
	backend := strings.TrimRight(t.BackendURL, "/")
	return []Check{
		{Name: "Frontend Health Check", URL: t.FrontendURL, Kind: Page},
		{Name: "Backend API - List Tasks", URL: strings.TrimRight(t.APIURL, "/") + "/tasks", Kind: API},
		{Name: "Backend Health Check", URL: backend + "/health", Kind: Health},
		{Name: "Backend Actuator Health", URL: backend + "/actuator/health", Kind: Health},
	}
}

// Runner runs probes sequentially.
type Runner struct {
	Client  *http.Client
	Timeout time.Duration
}

// Run probes every check in order.
func (r *Runner) Run(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		res := r.probe(ctx, c)
		if res.OK() {
			log.Debug().Str("check", c.Name).Int("status", res.Status).Msg("probe passed")
		} else {
			log.Debug().Str("check", c.Name).Err(res.Err).Msg("probe failed")
		}
		results = append(results, res)
	}
	return results
}

func (r *Runner) probe(ctx context.Context, c Check) Result {
	res := Result{Check: c}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		res.Err = err
		return res
	}
	if c.Kind == API {
		req.Header.Set("Accept", "application/json")
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer googleapi.CloseBody(resp)

	res.Status = resp.StatusCode
	res.StatusText = http.StatusText(resp.StatusCode)

	switch c.Kind {
	case Page:
		if resp.StatusCode >= http.StatusInternalServerError {
			res.Err = fmt.Errorf("%d %s", res.Status, res.StatusText)
		}
	case Health:
		if err := googleapi.CheckResponse(resp); err != nil {
			res.Err = fmt.Errorf("%d %s", res.Status, res.StatusText)
		}
	case API:
		if err := googleapi.CheckResponse(resp); err != nil {
			res.Err = fmt.Errorf("%d %s", res.Status, res.StatusText)
			return res
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			res.Err = err
			return res
		}
		if !json.Valid(body) {
			res.Err = fmt.Errorf("response is not JSON")
			return res
		}
		res.Preview = preview(body)
	}
	return res
}

func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > previewLen {
		s = s[:previewLen]
	}
	return s
}

// Report prints one line per result and a summary. It returns true when
// every probe passed.
func Report(w io.Writer, results []Result) bool {
	passed := 0
	for _, r := range results {
		switch {
		case !r.OK():
			fmt.Fprintf(w, "✗ %s: %v\n", r.Name, r.Err)
		case r.Kind == API:
			passed++
			fmt.Fprintf(w, "✓ %s: API responded with data (%s...)\n", r.Name, r.Preview)
		default:
			passed++
			fmt.Fprintf(w, "✓ %s: %d %s\n", r.Name, r.Status, r.StatusText)
		}
	}

	fmt.Fprintf(w, "\nTest Results: %d/%d tests passed\n", passed, len(results))
	if passed == len(results) {
		fmt.Fprintln(w, "✓ All HTTP smoke tests passed!")
		return true
	}
	fmt.Fprintln(w, "✗ Some HTTP smoke tests failed")
	return false
}
