// internal/utils/logger_test.go
package utils

import "testing"

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"nonsense", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithFields_DoesNotMutateParent(t *testing.T) {
	parent := NewLogger().(*SimpleLogger)
	child := parent.WithFields(map[string]interface{}{"job_id": "job-1"}).(*SimpleLogger)
	grandchild := child.WithField("video_index", 2).(*SimpleLogger)

	if len(parent.fields) != 0 {
		t.Fatalf("Parent logger gained fields: %v", parent.fields)
	}
	if len(child.fields) != 1 {
		t.Fatalf("Expected child to carry one field, got %v", child.fields)
	}
	if len(grandchild.fields) != 2 {
		t.Fatalf("Expected grandchild to carry both fields, got %v", grandchild.fields)
	}
}

func TestFormatFields_Deterministic(t *testing.T) {
	fields := map[string]interface{}{
		"b": 2,
		"a": 1,
		"c": "three",
	}
	want := "{a=1, b=2, c=three}"
	for i := 0; i < 10; i++ {
		if got := formatFields(fields); got != want {
			t.Fatalf("Expected %q, got %q", want, got)
		}
	}
}
