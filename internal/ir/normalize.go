package ir

import "strings"

// NormalizeExpression normalizes CR and CRLF line endings to LF and
// left-trims the result: writers emit \n only, and CR is never
// reintroduced on combine.
func NormalizeExpression(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimLeft(s, " \t\n")
}
