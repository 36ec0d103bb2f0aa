// Package diagnostics collects structured records describing everything
// that went wrong (or deserves a warning) during a conversion:
// append-only, monotonically observed, and passed by reference through
// the whole pipeline rather than returned piecemeal from every
// function.
package diagnostics

import (
	"fmt"
	"sync"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Code identifies the kind of condition being reported.
type Code string

const (
	CodeFormatNotSupported Code = "format_not_supported"
	CodeBadParameter       Code = "bad_parameter"
	CodeInvalidPath        Code = "invalid_path"
	CodeParseError         Code = "parse_error"
	CodeDuplicateSymbol    Code = "duplicate_symbol"
	CodeUnsupportedChange  Code = "unsupported_change"
	CodeEditorStateError   Code = "editor_state_error"
	CodeValidationWarning  Code = "validation_warning"
	CodeGenericWarning     Code = "generic_warning"
	CodeInternalError      Code = "internal_error"
)

// fatalCodes are the kinds that unwind a transform to the top-level wrapper.
var fatalCodes = map[Code]bool{
	CodeFormatNotSupported: true,
	CodeBadParameter:       true,
	CodeInvalidPath:        true,
	CodeParseError:         true,
	CodeDuplicateSymbol:    true,
	CodeUnsupportedChange:  true,
	CodeEditorStateError:   true,
	CodeInternalError:      true,
}

// IsFatal reports whether a Code represents a fatal diagnostic kind.
func IsFatal(c Code) bool {
	return fatalCodes[c]
}

// SourceSpan locates a diagnostic within a source-tree text file.
type SourceSpan struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (s SourceSpan) String() string {
	if s.File == "" {
		return ""
	}
	if s.StartLine == s.EndLine && s.StartCol == s.EndCol {
		return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine, s.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.File, s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// Diagnostic is one structured record.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Span     *SourceSpan
	Err      error // underlying cause, when wrapping a Go error
}

func (d Diagnostic) String() string {
	if d.Span != nil {
		return fmt.Sprintf("%s[%s] %s: %s", d.Severity, d.Code, d.Span, d.Message)
	}
	return fmt.Sprintf("%s[%s] %s", d.Severity, d.Code, d.Message)
}

// ErrorContainer accumulates diagnostics across a conversion pipeline.
// It is the single mutable object passed by reference through every
// stage; append is the only mutation it supports.
type ErrorContainer struct {
	mu    sync.Mutex
	items []Diagnostic
}

// New creates an empty ErrorContainer.
func New() *ErrorContainer {
	return &ErrorContainer{}
}

func (ec *ErrorContainer) add(d Diagnostic) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.items = append(ec.items, d)
}

// Warn appends a non-fatal diagnostic and returns it for chaining.
func (ec *ErrorContainer) Warn(code Code, format string, args ...any) Diagnostic {
	d := Diagnostic{Severity: SeverityWarning, Code: code, Message: fmt.Sprintf(format, args...)}
	ec.add(d)
	return d
}

// Error appends a fatal diagnostic and returns it as a Go error so callers
// can `return nil, ec.Error(...)` in one line.
func (ec *ErrorContainer) Error(code Code, format string, args ...any) error {
	d := Diagnostic{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...)}
	ec.add(d)
	return &DiagnosticError{Diagnostic: d}
}

// ErrorAt is Error with an attached SourceSpan.
func (ec *ErrorContainer) ErrorAt(code Code, span SourceSpan, format string, args ...any) error {
	d := Diagnostic{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...), Span: &span}
	ec.add(d)
	return &DiagnosticError{Diagnostic: d}
}

// Wrap records a fatal diagnostic that wraps an underlying error, preserving
// it for errors.Is/As via DiagnosticError.Unwrap.
func (ec *ErrorContainer) Wrap(code Code, err error, format string, args ...any) error {
	d := Diagnostic{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...), Err: err}
	ec.add(d)
	return &DiagnosticError{Diagnostic: d}
}

// Items returns a snapshot of all diagnostics recorded so far, in order.
func (ec *ErrorContainer) Items() []Diagnostic {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	out := make([]Diagnostic, len(ec.items))
	copy(out, ec.items)
	return out
}

// HasErrors reports whether any fatal diagnostic has been recorded.
func (ec *ErrorContainer) HasErrors() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	for _, d := range ec.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len reports the number of diagnostics recorded.
func (ec *ErrorContainer) Len() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return len(ec.items)
}

// DiagnosticError adapts a Diagnostic to the error interface so a fatal
// diagnostic can also be returned and chained through errors.Is/As.
type DiagnosticError struct {
	Diagnostic
}

func (e *DiagnosticError) Error() string {
	return e.Diagnostic.String()
}

func (e *DiagnosticError) Unwrap() error {
	return e.Diagnostic.Err
}
