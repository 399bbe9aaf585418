// Package security checks user-supplied output paths and file names.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateOutputPath rejects paths that cannot name a new or existing
// regular file on disk: everything CheckOutputName rejects, plus existing
// directories.
func ValidateOutputPath(path string, exts ...string) error {
	if err := CheckOutputName(path, exts...); err != nil {
		return err
	}
	if info, err := os.Stat(filepath.Clean(path)); err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}
	return nil
}

// CheckOutputName rejects empty paths, paths containing NUL, and extensions
// outside exts without touching any filesystem. With no exts any extension
// is accepted.
func CheckOutputName(path string, exts ...string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path is empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("output path contains NUL byte")
	}
	clean := filepath.Clean(path)
	if len(exts) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(clean))
	for _, e := range exts {
		if ext == e {
			return nil
		}
	}
	return fmt.Errorf("output path %s must end in one of %v", path, exts)
}

// SanitizeFilename maps an identifier to a safe file name component. Runs of
// characters other than ASCII letters, digits, dot, underscore and dash
// become one underscore; the result is capped at 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		safe := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-'
		switch {
		case safe:
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
