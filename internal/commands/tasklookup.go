package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/viewmodel"
)

// lookupTask fetches a task, reporting a missing task as a user error.
func lookupTask(ctx context.Context, svc service.Service, id int64, errOut io.Writer) (service.Task, int, bool) {
	task, err := svc.GetTask(ctx, id)
	if err != nil {
		return service.Task{}, reportError(errOut, id, err), false
	}
	return task, exitcode.Success, true
}

// reportError prints err and returns its exit code.
func reportError(errOut io.Writer, id int64, err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	case errors.Is(err, service.ErrInvalidTask), errors.Is(err, viewmodel.ErrUnknownStatus), errors.Is(err, viewmodel.ErrStatusUpdating):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// normalizeStatus upper-cases a status typed by the user, accepting
// spaces or dashes for underscores ("in progress", "in-progress").
func normalizeStatus(s string) service.Status {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return service.Status(s)
}

// checkStatus verifies status against the backend's status set.
func checkStatus(ctx context.Context, vm *viewmodel.Model, status service.Status, errOut io.Writer) bool {
	_ = vm.LoadStatuses(ctx)
	if vm.KnownStatus(status) {
		return true
	}
	valid := make([]string, 0, len(vm.Statuses()))
	for _, s := range vm.Statuses() {
		valid = append(valid, string(s))
	}
	fmt.Fprintf(errOut, "error: unknown status: %s (valid: %s)\n", status, strings.Join(valid, ", "))
	return false
}

// checkDueDate validates a due date typed by the user and returns it in the
// backend's date-time form.
func checkDueDate(due string, errOut io.Writer) (string, bool) {
	normalized, ok := service.NormalizeDue(due)
	if !ok {
		fmt.Fprintf(errOut, "error: invalid due date: %s (use YYYY-MM-DD or YYYY-MM-DDTHH:MM)\n", due)
		return "", false
	}
	return normalized, true
}

// confirmPrompt asks on errOut and reads the answer from in. Only "y" or
// "yes" confirm; a nil reader declines.
func confirmPrompt(in io.Reader, errOut io.Writer, question string) bool {
	fmt.Fprintf(errOut, "%s [y/N] ", question)
	if in == nil {
		fmt.Fprintln(errOut)
		return false
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(errOut)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// optionalString is a string flag that records whether it was set.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// clock is replaced in tests.
var clock = time.Now
