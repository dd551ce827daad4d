package retrace

import (
	"strings"
	"testing"
)

func TestCodeSignatureDeterministic(t *testing.T) {
	inputs := []string{"", "foo", "  indented", "日本語", strings.Repeat("x", 4096)}
	for _, in := range inputs {
		a := CodeSignature(in)
		b := CodeSignature(in)
		if a != b {
			t.Fatalf("signature not deterministic for %q: %s != %s", in, a, b)
		}
		if len(a) != 64 {
			t.Fatalf("expected 64 hex chars, got %d for %q", len(a), in)
		}
		if a != strings.ToLower(a) {
			t.Fatalf("expected lowercase hex, got %s", a)
		}
	}
}

func TestNormalizeLineEquivalence(t *testing.T) {
	if CodeSignature("foo\r\n") != CodeSignature("foo\n") {
		t.Fatalf("CRLF and LF lines must hash identically")
	}
	if CodeSignature("foo  \t") != CodeSignature("foo") {
		t.Fatalf("trailing whitespace must not affect the signature")
	}
	if CodeSignature("  foo") == CodeSignature("foo") {
		t.Fatalf("leading whitespace is content and must affect the signature")
	}
}

func TestEmptyLineSignature(t *testing.T) {
	// sha256 of the empty string
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := CodeSignature(""); got != want {
		t.Fatalf("empty line signature = %s, want %s", got, want)
	}
	if CodeSignature("\r\n") != want {
		t.Fatalf("a bare newline normalizes to the empty line")
	}
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("a\nb\n")
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Fatalf("unexpected lines %v", lines)
	}
	if SplitLines("") != nil {
		t.Fatalf("empty code unit has no lines")
	}
	if got := SplitLines("single"); len(got) != 1 || got[0] != "single" {
		t.Fatalf("unexpected lines %v", got)
	}
}

func TestCorsForKeepsDuplicates(t *testing.T) {
	cors := CorsFor("a\na\nb")
	if len(cors) != 3 {
		t.Fatalf("expected 3 cors got %d", len(cors))
	}
	if cors[0].Signature != cors[1].Signature {
		t.Fatalf("duplicate lines must produce duplicate signatures")
	}
	for i, c := range cors {
		if c.Order != i {
			t.Fatalf("expected order %d got %d", i, c.Order)
		}
	}
}
