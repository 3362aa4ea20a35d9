package importer

import (
	"errors"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

var (
	ErrParse      = errors.New("importer: input is not valid JSON")
	ErrFormat     = errors.New("importer: expected a task list or an object with a tasks list")
	ErrEmptyBatch = errors.New("importer: no tasks found")
	ErrBusy       = errors.New("importer: import already in progress")
)

type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error { return e.Err }

const PreviewNotesWidth = 50

// Sanitize makes user supplied text safe to print on a terminal: escape
// sequences and control characters are removed, markup is left as literal
// text.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}

func Truncate(s string, width int) string {
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "...")
}
