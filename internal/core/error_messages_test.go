package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/branchtree/internal/tabular"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error", nil, ""},
		{"malformed input", fmt.Errorf("parse: %w", tabular.ErrMalformedInput), "FILE002"},
		{"unsupported format", tabular.ErrUnsupportedFormat, "FILE003"},
		{"no content", ErrNoContent, "FILE004"},
		{"body too large", errors.New("http: request body too large"), "FILE001"},
		{"invalid body", ErrInvalidBody, "REQ001"},
		{"unknown strategy", fmt.Errorf("%w: %q", ErrUnknownStrategy, "x"), "REQ002"},
		{"busy", ErrTooManyConversions, "CONV001"},
		{"deadline", fmt.Errorf("convert: %w", errors.New("context deadline exceeded")), "CONV003"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"case insensitive", errors.New("MALFORMED TABULAR INPUT"), "FILE002"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError().Code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	want := "System is busy processing other files (Code: CONV001). Please wait a moment and try again"
	if got := FormatUserError(ErrTooManyConversions); got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true, want false")
	}
	if !IsUserFacing(tabular.ErrMalformedInput) {
		t.Error("malformed input should be user facing")
	}
	if IsUserFacing(errors.New("nil pointer dereference")) {
		t.Error("unmatched error should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	ue := NewUserError(tabular.ErrMalformedInput)
	if ue.Error() != "The file could not be read as a table" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if !errors.Is(ue, tabular.ErrMalformedInput) {
		t.Error("UserError should unwrap to the technical error")
	}
}
