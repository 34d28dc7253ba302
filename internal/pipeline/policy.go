package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ErrorPolicy decides what happens to the rest of a run when one archive fails.
type ErrorPolicy int

const (
	// AbortOnError stops the run at the first failing archive.
	AbortOnError ErrorPolicy = iota
	// SkipAndContinue records the failure and moves on to the next archive.
	SkipAndContinue
)

func (p ErrorPolicy) String() string {
	switch p {
	case AbortOnError:
		return "abort"
	case SkipAndContinue:
		return "continue"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// ParseErrorPolicy maps the config spelling to a policy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return AbortOnError, nil
	case "continue", "skip":
		return SkipAndContinue, nil
	default:
		return AbortOnError, fmt.Errorf("unknown error policy %q (want abort or continue)", s)
	}
}

// Extension is the file extension of the archives picked up by a run.
const Extension = "vsix"

// IsArchive reports whether path names a .vsix file. A name that is only an
// extension (".vsix") has no extension and does not match.
func IsArchive(path string, ignoreCase bool) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return false
	}
	if ignoreCase {
		return strings.EqualFold(ext[1:], Extension)
	}
	return ext[1:] == Extension
}
