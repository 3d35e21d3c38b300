// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/issue"
	"github.com/cish/cish/internal/procexec"
	"github.com/cish/cish/internal/toolenv"
)

// issueStyle lets glamour pick dark, light or plain output for the terminal.
const issueStyle = "auto"

// ServiceError attaches an issue catalog entry to an error returned by a
// command handler. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID selects the help text rendered after the error; zero for none.
	IssueID issue.Id
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError picks the issue catalog entry for err. An explicit
// ServiceError or ActionableError issue wins over the error's type.
func classifyError(err error) issue.Id {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.IssueID != 0 {
		return svcErr.IssueID
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}

	switch {
	case errors.Is(err, config.ErrConfigParse):
		return issue.ToolchainConfigInvalidId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.SettingsLoadFailedId
	case errors.Is(err, toolenv.ErrUnknownVersion):
		return issue.UnknownVersionId
	case errors.Is(err, procexec.ErrTimeout):
		return issue.CommandTimedOutId
	case errors.Is(err, toolenv.ErrCommandFailed):
		return issue.CommandFailedId
	case errors.Is(err, procexec.ErrExecutableNotFound):
		return issue.ProgramNotFoundId
	}
	return 0
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their own Format; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError writes the styled error line followed by the issue help, if
// err maps to one. A silent ExitError writes nothing.
func (a *App) renderError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.verbose))

	id := classifyError(err)
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(issueStyle)
	if renderErr != nil {
		a.logger.Warn("failed to render issue catalog entry", "issue", id, "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}
