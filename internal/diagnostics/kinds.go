package diagnostics

import "fmt"

// The types below are small typed wrappers so callers building a
// diagnostic get compile-time structure instead of assembling a format
// string by hand; all of them still flow into ErrorContainer as a plain
// Diagnostic underneath.

// FormatNotSupportedError reports a format-version mismatch or a missing
// required manifest.
type FormatNotSupportedError struct {
	Found, Wanted string
}

func (e *FormatNotSupportedError) Error() string {
	return fmt.Sprintf("format version %q not supported, expected %q", e.Found, e.Wanted)
}

// BadParameterError reports CLI misuse or a malformed path argument.
type BadParameterError struct {
	Param, Reason string
}

func (e *BadParameterError) Error() string {
	return fmt.Sprintf("bad parameter %q: %s", e.Param, e.Reason)
}

// InvalidPathError reports a relative/base path mismatch (pathcodec.Relative).
type InvalidPathError struct {
	Full, Base string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("path %q is not under base %q", e.Full, e.Base)
}

// DuplicateSymbolError reports a control identifier that is not unique
// within its scope.
type DuplicateSymbolError struct {
	Name string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("duplicate control identifier %q", e.Name)
}

// UnsupportedChangeError reports an attempt to add a property to a
// component definition that was not present at unpack time.
type UnsupportedChangeError struct {
	Component, Property string
}

func (e *UnsupportedChangeError) Error() string {
	return fmt.Sprintf("component %q gained property %q, which is not a supported change", e.Component, e.Property)
}

// EditorStateErrorDetail reports duplicate control-state entries across
// editor-state files.
type EditorStateErrorDetail struct {
	Name string
}

func (e *EditorStateErrorDetail) Error() string {
	return fmt.Sprintf("duplicate editor state entry for control %q", e.Name)
}
