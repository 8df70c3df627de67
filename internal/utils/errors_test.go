// internal/utils/errors_test.go
package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStructuredError_Error(t *testing.T) {
	err := NewError(ErrCodeFetchFailed, "request timed out")

	if !strings.Contains(err.Error(), "FETCH_FAILED") {
		t.Fatalf("Expected code in message, got: %v", err)
	}
	if !strings.Contains(err.Error(), "request timed out") {
		t.Fatalf("Expected message text, got: %v", err)
	}
}

func TestWrapError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := WrapError(ErrCodeDownloadFailed, "tier 2 failed", cause)

	if !errors.Is(err, cause) {
		t.Fatal("Expected wrapped cause to be detectable via errors.Is")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("Expected cause in message, got: %v", err)
	}
}

func TestStructuredError_IsMatchesByCode(t *testing.T) {
	err := WrapError(ErrCodeNoStreamFound, "no CDN entry present", nil)
	target := NewError(ErrCodeNoStreamFound, "")

	if !errors.Is(err, target) {
		t.Fatal("Expected errors with the same code to match")
	}

	other := NewError(ErrCodeConfigParse, "")
	if errors.Is(err, other) {
		t.Fatal("Expected errors with different codes not to match")
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewError(ErrCodeNormalizationFailed, "no audio stream"))

	if got := CodeOf(err); got != ErrCodeNormalizationFailed {
		t.Fatalf("Expected NORMALIZATION_FAILED, got %s", got)
	}

	if got := CodeOf(fmt.Errorf("plain")); got != ErrCodeInternal {
		t.Fatalf("Expected INTERNAL_ERROR for plain error, got %s", got)
	}
}

func TestIsCode(t *testing.T) {
	err := WrapError(ErrCodeUploadFailed, "bucket rejected object", fmt.Errorf("403"))

	if !IsCode(err, ErrCodeUploadFailed) {
		t.Fatal("Expected IsCode to match UPLOAD_FAILED")
	}
	if IsCode(err, ErrCodeFetchFailed) {
		t.Fatal("Expected IsCode not to match a different code")
	}
}

func TestWithContext(t *testing.T) {
	err := NewError(ErrCodeDownloadFailed, "both tiers exhausted").
		WithContext("player_url", "https://player.vimeo.com/video/1").
		WithContext("index", 1)

	if err.Context["index"] != 1 {
		t.Fatalf("Expected context to hold index, got %v", err.Context)
	}
}
