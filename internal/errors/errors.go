package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/tracker/internal/logger"
)

// Error kinds shared by the stores and the tracker service. Wrap them with
// fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	// ErrNotFound is returned when a tracker, category or record does not exist
	ErrNotFound = stderrors.New("not found")
	// ErrConversion is returned when a stored row cannot be rebuilt into an entity
	ErrConversion = stderrors.New("conversion failure")
	// ErrRange is returned when an index into grouped results is out of bounds
	ErrRange = stderrors.New("index out of range")
	// ErrFutureDate is returned when completing a tracker on a day after today
	ErrFutureDate = stderrors.New("date is in the future")
	// ErrValidation is returned when an entity breaks one of its invariants
	ErrValidation = stderrors.New("validation failed")
	// ErrReserved is returned when an operation targets a system category
	ErrReserved = stderrors.New("reserved category")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
