package errcode

import (
	"errors"
	"os"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestCodesAreDistinct(t *testing.T) {
	seen := make(map[string]Code)
	for c, m := range messages {
		if other, ok := seen[m]; ok {
			t.Errorf("Codes %d and %d share the message %q", c, other, m)
		}
		seen[m] = c
		if c <= 0 {
			t.Errorf("Code %d is not a failing exit status", c)
		}
	}
}

func TestError(t *testing.T) {
	err := Fatal(CannotRemoveFile, os.ErrPermission)
	if !strings.HasPrefix(err.Error(), "e09: Cannot remove file") {
		t.Errorf("Received %q", err.Error())
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("Unwrap did not reach the underlying error")
	}
	wrapped := pkgerrors.Wrap(err, "transfer")
	var e *Error
	if !errors.As(wrapped, &e) || e.Code != CannotRemoveFile {
		t.Errorf("Received %v, expected code %d", e, CannotRemoveFile)
	}
	if Code(99).Message() != "exit code 99" {
		t.Errorf("Received %q", Code(99).Message())
	}
}
