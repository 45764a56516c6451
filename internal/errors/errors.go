package errors

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/tracker/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats a message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Report logs err and writes its formatted form to w. It returns false for a nil error.
func Report(w io.Writer, err error) bool {
	if err == nil {
		return false
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(w, Format(err))
	return true
}

// Fatal reports err on stderr and exits with status 1
func Fatal(err error) {
	if Report(os.Stderr, err) {
		os.Exit(1)
	}
}

// Is and As re-export the standard helpers so callers need a single errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
