package retrace

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeLine canonicalizes one source line before hashing. Trailing
// carriage-return/newline remnants and trailing spaces/tabs are stripped;
// leading whitespace is kept because indentation is content. The recording
// path and the scanning path must both go through this function, otherwise
// retention matching silently breaks.
func NormalizeLine(line string) string {
	return strings.TrimRight(line, "\r\n \t")
}

// Signature hashes an already-normalized line into a 64-character lowercase
// hex SHA-256 digest. Purely a function of its input: no salt, no locale.
func Signature(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CodeSignature is the composed entry point used by both the instrumentation
// client and the report scanner.
func CodeSignature(rawLine string) string {
	return Signature(NormalizeLine(rawLine))
}

// SplitLines splits a code unit into lines, tolerating CRLF. A trailing
// newline does not produce a phantom empty last line.
func SplitLines(code string) []string {
	if code == "" {
		return nil
	}
	code = strings.TrimSuffix(code, "\n")
	return strings.Split(code, "\n")
}

// CorsFor derives the ordered {signature, order} pairs for a code unit.
// Repeated lines produce repeated signatures on purpose.
func CorsFor(code string) []Cor {
	lines := SplitLines(code)
	cors := make([]Cor, 0, len(lines))
	for i, line := range lines {
		cors = append(cors, Cor{Signature: CodeSignature(line), Order: i})
	}
	return cors
}
