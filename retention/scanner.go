package retention

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/retracehq/retrace"
)

// skipDirs are directory names never worth scanning.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
}

// ScanResult holds everything derived from one directory walk.
type ScanResult struct {
	Files      int
	Signatures []string // one per line, walk order, duplicates preserved
}

// ScanDir derives line signatures for every text file under root, using the
// same normalize-and-hash composition as the recording path. Identical file
// bodies (vendored copies and the like) are hashed once and memoized under
// a fast xxh3 fingerprint.
func ScanDir(root string) (ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return ScanResult{}, fmt.Errorf("cannot access project path %s: %w", root, err)
	}
	if !info.IsDir() {
		return ScanResult{}, fmt.Errorf("project path %s is not a directory", root)
	}

	result := ScanResult{}
	memo := map[xxh3.Uint128][]string{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if _, skip := skipDirs[name]; skip {
				return filepath.SkipDir
			}
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if isBinary(content) {
			return nil
		}

		fingerprint := xxh3.Hash128(content)
		sigs, ok := memo[fingerprint]
		if !ok {
			lines := retrace.SplitLines(string(content))
			sigs = make([]string, 0, len(lines))
			for _, line := range lines {
				sigs = append(sigs, retrace.CodeSignature(line))
			}
			memo[fingerprint] = sigs
		}

		result.Files++
		result.Signatures = append(result.Signatures, sigs...)
		return nil
	})
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan failed: %w", err)
	}

	return result, nil
}

// isBinary sniffs for a NUL byte in the leading chunk, the same heuristic
// git uses.
func isBinary(content []byte) bool {
	const sniffLen = 8000
	if len(content) > sniffLen {
		content = content[:sniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}
