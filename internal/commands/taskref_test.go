package commands

import (
	"testing"
)

func TestParseTaskID_Numeric(t *testing.T) {
	id, rest, err := ParseTaskID([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 5 {
		t.Errorf("expected id 5, got %d", id)
	}
	if len(rest) != 0 {
		t.Errorf("expected no remaining args, got %v", rest)
	}
}

func TestParseTaskID_Hash(t *testing.T) {
	id, _, err := ParseTaskID([]string{"#42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Errorf("expected id 42, got %d", id)
	}
}

func TestParseTaskID_Rest(t *testing.T) {
	id, rest, err := ParseTaskID([]string{"7", "COMPLETED", "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("expected id 7, got %d", id)
	}
	if len(rest) != 2 || rest[0] != "COMPLETED" {
		t.Errorf("unexpected remaining args %v", rest)
	}
}

func TestParseTaskID_NoArgs_Error(t *testing.T) {
	_, _, err := ParseTaskID(nil)
	if err != ErrTaskIDRequired {
		t.Errorf("expected ErrTaskIDRequired, got %v", err)
	}
	_, _, err = ParseTaskID([]string{" "})
	if err != ErrTaskIDRequired {
		t.Errorf("expected ErrTaskIDRequired for blank arg, got %v", err)
	}
}

func TestParseTaskID_Invalid_Error(t *testing.T) {
	for _, arg := range []string{"a1", "-3", "0", "#", "1.5", "99999999999999999999"} {
		_, _, err := ParseTaskID([]string{arg})
		if err == nil {
			t.Errorf("%q: expected error", arg)
			continue
		}
		if want := "invalid task id: " + arg; err.Error() != want {
			t.Errorf("%q: expected %q, got %q", arg, want, err.Error())
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]string{
		"new":          "NEW",
		" in progress": "IN_PROGRESS",
		"in-progress":  "IN_PROGRESS",
		"COMPLETED":    "COMPLETED",
	}
	for in, want := range tests {
		if got := string(normalizeStatus(in)); got != want {
			t.Errorf("normalizeStatus(%q): expected %q, got %q", in, want, got)
		}
	}
}
