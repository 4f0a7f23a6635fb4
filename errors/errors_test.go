package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	e := New(ErrCodeRateLimit, "too many requests")

	if e.Code() != ErrCodeRateLimit {
		t.Errorf("Expected code RATE_LIMITED, got %s", e.Code())
	}
	if e.Category() != CategoryResource {
		t.Errorf("Expected resource category, got %s", e.Category())
	}
	if !e.Retryable() {
		t.Error("Rate limit errors should be retryable by default")
	}
	if e.Timestamp().IsZero() {
		t.Error("Expected timestamp to be set")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	e := Wrap(ErrCodeNetworkErr, "openai call failed", cause)

	if !stderrors.Is(e, cause) {
		t.Error("Wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(e.Error(), "connection refused") {
		t.Errorf("Expected cause in message, got %q", e.Error())
	}
}

func TestRetryableOverride(t *testing.T) {
	e := New(ErrCodeTimeout, "slow provider", WithRetryable(false))
	if e.Retryable() {
		t.Error("Explicit retryable=false should override transient default")
	}
}

func TestCategoryDefaults(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorCategory
	}{
		{ErrCodeTimeout, CategoryTransient},
		{ErrCodeUnavailable, CategoryTransient},
		{ErrCodeUnauthorized, CategoryPermanent},
		{ErrCodeInvalidInput, CategoryPermanent},
		{ErrCodeUnsupported, CategoryPermanent},
		{ErrCodeRateLimit, CategoryResource},
		{ErrCodeQuotaExceeded, CategoryResource},
		{ErrCodePanic, CategoryInternal},
		{ErrorCode("BOGUS"), CategoryInternal},
	}

	for _, tt := range tests {
		if got := tt.code.DefaultCategory(); got != tt.want {
			t.Errorf("%s: expected category %s, got %s", tt.code, tt.want, got)
		}
	}
}

func TestCodeOf(t *testing.T) {
	e := New(ErrCodeUnauthorized, "bad key")
	wrapped := fmt.Errorf("agent: %w", e)

	if CodeOf(wrapped) != ErrCodeUnauthorized {
		t.Errorf("Expected UNAUTHORIZED through wrapping, got %s", CodeOf(wrapped))
	}
	if CodeOf(stderrors.New("plain")) != ErrCodeInternal {
		t.Error("Plain errors should map to INTERNAL")
	}
}

func TestIsCode(t *testing.T) {
	e := New(ErrCodeNotFound, "no such task", WithTaskID(42))

	if !IsCode(e, ErrCodeNotFound) {
		t.Error("IsCode should match NOT_FOUND")
	}
	if IsCode(e, ErrCodeTimeout) {
		t.Error("IsCode should not match a different code")
	}
	if e.TaskID() != 42 {
		t.Errorf("Expected task ID 42, got %d", e.TaskID())
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(ErrCodeUnavailable, "down")) {
		t.Error("Transient errors should be retryable")
	}
	if IsRetryable(New(ErrCodeInvalidInput, "bad prompt")) {
		t.Error("Permanent errors should not be retryable")
	}
	if IsRetryable(stderrors.New("plain")) {
		t.Error("Unstructured errors should not be retryable")
	}
}

func TestMarshalJSON(t *testing.T) {
	e := Wrap(ErrCodeRateLimit, "gemini call failed", stderrors.New("429"),
		WithProvider("google"), WithTaskID(7))

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var j map[string]interface{}
	if err := json.Unmarshal(data, &j); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if j["code"] != "RATE_LIMITED" {
		t.Errorf("Expected code RATE_LIMITED, got %v", j["code"])
	}
	if j["provider"] != "google" {
		t.Errorf("Expected provider google, got %v", j["provider"])
	}
	if j["cause"] != "429" {
		t.Errorf("Expected cause 429, got %v", j["cause"])
	}
	if j["retryable"] != true {
		t.Error("Expected retryable true")
	}
}
