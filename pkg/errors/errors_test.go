package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidPin, "malformed pin: %s", "Flask=1.0")
	if err.Code != ErrCodeInvalidPin {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidPin)
	}
	if err.Message != "malformed pin: Flask=1.0" {
		t.Errorf("Message = %q", err.Message)
	}
	want := "INVALID_PIN: malformed pin: Flask=1.0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch %s", "flask")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return cause")
	}
	want := "NETWORK_ERROR: failed to fetch flask: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodePackageNotFound, "no such package")

	if !Is(err, ErrCodePackageNotFound) {
		t.Error("Is() should match the error's own code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is() should not match a different code")
	}
	if Is(fmt.Errorf("plain error"), ErrCodeNetwork) {
		t.Error("Is() should not match plain errors")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, ErrCodePackageNotFound) {
		t.Error("Is() should unwrap to find the code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "slow")); got != ErrCodeTimeout {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeTimeout)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode for plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidVersion, "bad version")); got != "bad version" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("UserMessage for plain error = %q", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	err := &RateLimitedError{RetryAfter: 30}
	if err.Error() != "rate limited: retry after 30 seconds" {
		t.Errorf("Error() = %q", err.Error())
	}
	if (&RateLimitedError{}).Error() != "rate limited" {
		t.Error("zero RetryAfter should omit the retry hint")
	}
	if err.Code() != ErrCodeRateLimited {
		t.Errorf("Code() = %q", err.Code())
	}
}
