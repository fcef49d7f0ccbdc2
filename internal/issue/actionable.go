// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: the step osh was taking, the
	// path or URL it was working on and what the user can do about it.
	//
	//	return issue.NewErrorContext().
	//		WithOperation("create virtual environment").
	//		WithResource(venv).
	//		WithSuggestion("Install the python3-venv package").
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		// Operation completes "failed to ...", e.g. "link Odoo sources".
		Operation string
		// Message, when set, is printed instead of the "failed to" headline.
		Message     string
		Resource    string
		Suggestions []string
		Cause       error
	}

	// ErrorContext accumulates the parts of an ActionableError.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns the one-line form: headline, resource, then cause.
func (e *ActionableError) Error() string {
	parts := make([]string, 0, 3)
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else {
		parts = append(parts, "failed to "+e.Operation)
		if e.Resource != "" {
			parts = append(parts, e.Resource)
		}
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// HasSuggestions reports whether the error carries hints for the user.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// Format renders the error for the terminal. Suggestions follow as a
// bulleted list; verbose adds every error in the cause chain, numbered.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.HasSuggestions() {
		b.WriteByte('\n')
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		n := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", n, err)
			n++
		}
	}
	return b.String()
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithMessage sets a fixed headline, for failures that are not a step,
// such as "No Odoo sources available".
func (c *ErrorContext) WithMessage(msg string) *ErrorContext {
	c.err.Message = msg
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, s)
	return c
}

func (c *ErrorContext) WithSuggestions(s ...string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, s...)
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns the error, or nil when neither an operation nor a message
// was given.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" && c.err.Message == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// BuildError is Build typed as error; a nil result stays a nil interface.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
