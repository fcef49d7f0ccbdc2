// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/osh-cli/osh/internal/issue"
)

// ServiceError attaches an issue catalog page to a command error. The error
// handler prints the error first, then the rendered page.
type ServiceError struct {
	Err     error
	IssueID issue.Id
}

// newServiceError panics on a nil err: a page without an error would print
// help for a failure that never happened.
func newServiceError(err error, id issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: id}
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// renderIssuePage prints the catalog page for id. Unknown ids print nothing.
func renderIssuePage(w io.Writer, id issue.Id) {
	page := issue.Get(id)
	if page == nil {
		return
	}
	rendered, err := page.Render("dark")
	if err != nil {
		slog.Warn("failed to render issue page", "issue", id, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}
