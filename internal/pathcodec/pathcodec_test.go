package pathcodec

import "testing"

func TestEscapeFileNameLiteralsPassThrough(t *testing.T) {
	in := "0123456789AZaz[]_. \\"
	if got := EscapeFileName(in); got != in {
		t.Errorf("EscapeFileName(%q) = %q, want unchanged", in, got)
	}
}

func TestEscapeFileNameControlChars(t *testing.T) {
	got := EscapeFileName("\r\t!$/^%")
	want := "%0d%09%21%24%2f%5e%25"
	if got != want {
		t.Errorf("EscapeFileName = %q, want %q", got, want)
	}
}

func TestEscapeFileNameWideCodePoint(t *testing.T) {
	got := EscapeFileName("\u4523")
	want := "%%4523"
	if got != want {
		t.Errorf("EscapeFileName = %q, want %q", got, want)
	}
}

func TestUnescapeFileNameBasic(t *testing.T) {
	got := UnescapeFileName("foo-%41")
	want := "foo-A"
	if got != want {
		t.Errorf("UnescapeFileName = %q, want %q", got, want)
	}
}

func TestUnescapeFileNameStrayPercent(t *testing.T) {
	got := UnescapeFileName("100% done")
	want := "100% done"
	if got != want {
		t.Errorf("UnescapeFileName = %q, want %q", got, want)
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{
		"Plain Name",
		"weird/name\\with:colons?",
		"\u4523mixed\u00e9text",
		"100% literal",
		"",
	}
	for _, s := range cases {
		if got := UnescapeFileName(EscapeFileName(s)); got != s {
			t.Errorf("round trip failed for %q: got %q", s, got)
		}
	}
}

func TestRelativeDirectoryLikeSegment(t *testing.T) {
	got, err := Relative(`C:\Foo\Bar\Baz`, `C:\Foo`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `Bar\Baz\`; got != want {
		t.Errorf("Relative = %q, want %q", got, want)
	}
}

func TestRelativeFileLikeSegment(t *testing.T) {
	got, err := Relative(`C:\Foo\Bar.msapp`, `C:\`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `Foo\Bar.msapp`; got != want {
		t.Errorf("Relative = %q, want %q", got, want)
	}
}

func TestRelativeRejectsOutsideBase(t *testing.T) {
	if _, err := Relative(`C:\Other\Thing`, `C:\Foo`); err == nil {
		t.Error("expected error for path outside base")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  /Foo\\Bar/  ": "foo/bar",
		"Src/Screen1.pa.yaml": "src/screen1.pa.yaml",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
