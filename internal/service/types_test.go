package service

import "testing"

func TestNormalizeDue(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"2030-01-02", "2030-01-02T00:00:00", true},
		{" 2030-01-02 ", "2030-01-02T00:00:00", true},
		{"2030-01-02T09:30", "2030-01-02T09:30", true},
		{"2030-01-02T09:30:15", "2030-01-02T09:30:15", true},
		{"2030-02-30", "", false},
		{"tomorrow", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDue(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeDue(%q): expected (%q, %v), got (%q, %v)", tt.in, tt.want, tt.ok, got, ok)
		}
	}
}

func TestSearchFilters_IsEmpty(t *testing.T) {
	if !(SearchFilters{}).IsEmpty() {
		t.Error("expected zero filters to be empty")
	}
	for _, f := range []SearchFilters{{Title: "a"}, {Status: StatusNew}, {DueDate: "2030-01-02"}} {
		if f.IsEmpty() {
			t.Errorf("expected %+v not to be empty", f)
		}
	}
}

func TestSearchFilters_Match(t *testing.T) {
	task := Task{Title: "Write Report", Status: StatusNew, DueDate: "2030-01-02T09:30:00"}
	tests := []struct {
		f    SearchFilters
		want bool
	}{
		{SearchFilters{}, true},
		{SearchFilters{Title: "report"}, true},
		{SearchFilters{Title: "memo"}, false},
		{SearchFilters{Status: StatusCompleted}, false},
		{SearchFilters{DueDate: "2030-01-02"}, true},
		{SearchFilters{DueDate: "2030-01-03"}, false},
	}
	for _, tt := range tests {
		if got := tt.f.Match(task); got != tt.want {
			t.Errorf("%+v: expected %v, got %v", tt.f, tt.want, got)
		}
	}
}
