// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New(`unknown toolchain version "9.9"`)
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "locate toolchains"},
			want: "failed to locate toolchains",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "locate toolchains", Resource: "/etc/cish/toolchains.json"},
			want: "failed to locate toolchains: /etc/cish/toolchains.json",
		},
		{
			name: "with cause",
			err:  &ActionableError{Operation: "resolve toolchain", Cause: cause},
			want: `failed to resolve toolchain: unknown toolchain version "9.9"`,
		},
		{
			name: "everything",
			err:  &ActionableError{Operation: "resolve toolchain", Resource: "9.9", Cause: cause},
			want: `failed to resolve toolchain: 9.9: unknown toolchain version "9.9"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_UnwrapsToCause(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("interpreter missing")
	err := error(&ActionableError{Operation: "run pip", Cause: fmt.Errorf("bind 3.12: %w", sentinel)})

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() = false, want the wrapped sentinel to be found")
	}
	if (&ActionableError{Operation: "run pip"}).Unwrap() != nil {
		t.Error("Unwrap() without cause should be nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("permission denied")
	ae := &ActionableError{
		Operation:   "load configuration",
		Resource:    "/home/u/.config/cish/config.cue",
		Suggestions: []string{"Check file permissions", "Set CISH_CONFIG_DIR"},
		Cause:       fmt.Errorf("open settings: %w", root),
	}

	t.Run("concise", func(t *testing.T) {
		t.Parallel()

		got := ae.Format(false)
		want := "failed to load configuration: /home/u/.config/cish/config.cue: open settings: permission denied\n" +
			"\n  • Check file permissions\n  • Set CISH_CONFIG_DIR"
		if got != want {
			t.Errorf("Format(false) =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("verbose adds the chain", func(t *testing.T) {
		t.Parallel()

		got := ae.Format(true)
		for _, want := range []string{"Error chain:", "1. open settings: permission denied", "2. permission denied"} {
			if !strings.Contains(got, want) {
				t.Errorf("Format(true) missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("no suggestions no chain", func(t *testing.T) {
		t.Parallel()

		bare := &ActionableError{Operation: "run pip"}
		if got := bare.Format(true); got != "failed to run pip" {
			t.Errorf("Format(true) = %q", got)
		}
	})
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("create virtual environment").
		WithResource("/tmp/venv").
		WithSuggestion("Install the venv module").
		WithSuggestion("Try --tool virtualenv", "Pass --clear").
		WithIssue(VirtualenvFailedId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() = nil")
	}
	if ae.Operation != "create virtual environment" || ae.Resource != "/tmp/venv" {
		t.Errorf("Build() = %+v", ae)
	}
	wantSugs := []string{"Install the venv module", "Try --tool virtualenv", "Pass --clear"}
	if !slices.Equal(ae.Suggestions, wantSugs) {
		t.Errorf("Suggestions = %q, want %q", ae.Suggestions, wantSugs)
	}
	if ae.Issue != VirtualenvFailedId {
		t.Errorf("Issue = %d, want %d", ae.Issue, VirtualenvFailedId)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error does not wrap the cause")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	c := NewErrorContext().WithResource("x").Wrap(errors.New("boom"))
	if ae := c.Build(); ae != nil {
		t.Errorf("Build() = %+v, want nil", ae)
	}
	if err := c.BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want untyped nil", err)
	}
}

func TestErrorContext_BuildIsSnapshot(t *testing.T) {
	t.Parallel()

	c := NewErrorContext().WithOperation("run pip").WithSuggestion("first")
	first := c.Build()
	c.WithSuggestion("second").WithOperation("run python")

	if first.Operation != "run pip" {
		t.Errorf("earlier Build() changed Operation to %q", first.Operation)
	}
	if len(first.Suggestions) != 1 {
		t.Errorf("earlier Build() suggestions = %q, want one", first.Suggestions)
	}

	var ae *ActionableError
	if !errors.As(c.BuildError(), &ae) || len(ae.Suggestions) != 2 {
		t.Errorf("BuildError() = %v, want two suggestions", ae)
	}
}
