package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidSuite, "no variants in %s", "suite.toml")

	if err.Code != ErrCodeInvalidSuite {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInvalidSuite)
	}
	if err.Message != "no variants in suite.toml" {
		t.Errorf("Message = %q", err.Message)
	}
	if !strings.Contains(err.Error(), "INVALID_SUITE") {
		t.Errorf("Error() should contain the code, got %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := Wrap(ErrCodeRendererFailed, cause, "rendering img.exr")

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeFileNotFound, "missing template")

	if !Is(err, ErrCodeFileNotFound) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is should not match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeInternal) {
		t.Error("Is should not match a plain error")
	}

	// Code survives wrapping with fmt.Errorf
	wrapped := fmt.Errorf("context: %w", err)
	if !Is(wrapped, ErrCodeFileNotFound) {
		t.Error("Is should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeImageDecode, "bad header")); got != ErrCodeImageDecode {
		t.Errorf("GetCode = %s", got)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode for plain error = %s, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeSceneNotFound, "scene bathroom not in suite")
	if got := UserMessage(err); got != "scene bathroom not in suite" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(fmt.Errorf("plain error")); got != "plain error" {
		t.Errorf("UserMessage for plain error = %q", got)
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{
		"veach-mis",
		"bdpt-our-power",
		"staircase1",
		"path",
	}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"..",
		"a/b",
		"a\\b",
		".hidden",
		"bad\x00name",
		strings.Repeat("x", 129),
	}
	for _, name := range invalid {
		err := ValidateName(name)
		if err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", name)
			continue
		}
		if !Is(err, ErrCodeInvalidName) {
			t.Errorf("ValidateName(%q) code = %s, want INVALID_NAME", name, GetCode(err))
		}
	}
}
