// Package pathcodec normalizes and escapes paths at the boundary
// between archive path space (forward-slash, case-insensitive) and
// filesystem path space (native separator). Escaping is deliberately
// not delegated to net/url: the archive format requires a specific
// non-standard scheme (percent-encoding ASCII, %%HHHH for code points
// above 0x7F) that round-trips byte for byte, so it is hand-rolled
// here.
package pathcodec

import (
	"strings"
)

// keepLiteral reports whether r is left untouched by EscapeFileName.
// The set is: ASCII letters and digits, space, '_', '.', '[', ']', '-', '\\'.
func keepLiteral(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '_', r == '.', r == '[', r == ']', r == '-', r == '\\':
		return true
	}
	return false
}

const hexDigits = "0123456789abcdef"

// EscapeFileName percent-encodes any character outside the literal set.
// Code points above 0x7F are encoded as %%HHHH (four hex digits); ASCII
// characters outside the literal set are encoded as %HH.
func EscapeFileName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepLiteral(r) {
			b.WriteRune(r)
			continue
		}
		if r <= 0x7F {
			b.WriteByte('%')
			b.WriteByte(hexDigits[(r>>4)&0xF])
			b.WriteByte(hexDigits[r&0xF])
			continue
		}
		b.WriteByte('%')
		b.WriteByte('%')
		b.WriteByte(hexDigits[(r>>12)&0xF])
		b.WriteByte(hexDigits[(r>>8)&0xF])
		b.WriteByte(hexDigits[(r>>4)&0xF])
		b.WriteByte(hexDigits[r&0xF])
	}
	return b.String()
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// UnescapeFileName reverses EscapeFileName. A stray '%' with insufficient
// or invalid hex digits following it is treated as a literal '%'.
func UnescapeFileName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++
			continue
		}
		// %%HHHH form: a 16-bit code point.
		if i+1 < len(s) && s[i+1] == '%' {
			if i+6 <= len(s) {
				h1, ok1 := hexVal(s[i+2])
				h2, ok2 := hexVal(s[i+3])
				h3, ok3 := hexVal(s[i+4])
				h4, ok4 := hexVal(s[i+5])
				if ok1 && ok2 && ok3 && ok4 {
					r := rune(h1)<<12 | rune(h2)<<8 | rune(h3)<<4 | rune(h4)
					b.WriteRune(r)
					i += 6
					continue
				}
			}
			b.WriteByte('%')
			i++
			continue
		}
		// %HH form.
		if i+2 < len(s) {
			h1, ok1 := hexVal(s[i+1])
			h2, ok2 := hexVal(s[i+2])
			if ok1 && ok2 {
				b.WriteByte(h1<<4 | h2)
				i += 3
				continue
			}
		}
		// Insufficient or invalid hex: literal '%'.
		b.WriteByte('%')
		i++
	}
	return b.String()
}

// Normalize maps an archive path into its canonical, case-insensitive
// comparison form: trimmed, backslashes replaced with slashes, leading
// and trailing slashes stripped, lowercased.
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.Trim(p, "/")
	return strings.ToLower(p)
}

// OnDiskName rewrites a normalized path's leading separator (if the
// original path was archive-rooted) into a leading underscore so it is
// safe to place directly on a filesystem. Archive paths reaching here
// have already had leading slashes trimmed by Normalize; this is kept
// as an explicit, separately named step because the rewrite is a
// distinct on-disk-safety concern from comparison normalization.
func OnDiskName(originalPath string) string {
	if strings.HasPrefix(originalPath, "/") || strings.HasPrefix(originalPath, "\\") {
		return "_" + Normalize(originalPath)
	}
	return Normalize(originalPath)
}

// Relative computes the path of full relative to base, both given in
// native-separator form, enforcing that full starts with base after
// separator normalization. A trailing separator is appended unless the
// final path segment looks like a filename (contains a '.'): the tool
// treats an extension-less last segment as a directory reference, e.g.
// relative("C:\Foo\Bar\Baz", "C:\Foo") == "Bar\Baz\", but
// relative("C:\Foo\Bar.msapp", "C:\") == "Foo\Bar.msapp".
func Relative(full, base string) (string, error) {
	nf := normalizeForCompare(full)
	nb := normalizeForCompare(base)
	nb = strings.TrimSuffix(nb, "/")
	if nb == "" {
		return full, nil
	}
	if nf == nb {
		return "", &invalidPathError{full, base}
	}
	if !strings.HasPrefix(nf, nb+"/") {
		return "", &invalidPathError{full, base}
	}
	rel := nf[len(nb)+1:]
	rel = strings.ReplaceAll(rel, "/", "\\")
	lastSeg := rel
	if idx := strings.LastIndex(rel, "\\"); idx >= 0 {
		lastSeg = rel[idx+1:]
	}
	if !strings.Contains(lastSeg, ".") && !strings.HasSuffix(rel, "\\") {
		rel += "\\"
	}
	return rel, nil
}

func normalizeForCompare(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return strings.TrimSuffix(p, "/")
}

type invalidPathError struct {
	Full, Base string
}

func (e *invalidPathError) Error() string {
	return "path \"" + e.Full + "\" is not under base \"" + e.Base + "\""
}
