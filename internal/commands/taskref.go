package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses the task id from the first argument and returns the
// remaining arguments. The id may be written as "12" or "#12".
func ParseTaskID(args []string) (int64, []string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return 0, nil, ErrTaskIDRequired
	}

	raw := strings.TrimPrefix(strings.TrimSpace(args[0]), "#")
	if !isAllDigits(raw) {
		return 0, nil, fmt.Errorf("invalid task id: %s", args[0])
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, nil, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, args[1:], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
