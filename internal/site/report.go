package site

import (
	"fmt"

	"go.uber.org/zap"
)

// FileError is a failure scoped to a single content file. The file is
// skipped; the rest of the run keeps going.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// Report aggregates everything that went wrong during a run, so an
// author sees all problems in one pass instead of fixing them one
// rebuild at a time.
type Report struct {
	Errors   []FileError
	Warnings []string
}

func (r *Report) addError(file string, err error) {
	r.Errors = append(r.Errors, FileError{File: file, Err: err})
}

func (r *Report) addWarnings(file string, warns []string) {
	for _, w := range warns {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", file, w))
	}
}

// Clean reports a run with no errors. Warnings alone leave a run clean.
func (r *Report) Clean() bool { return len(r.Errors) == 0 }

// Log surfaces every recorded warning and error. Nothing is swallowed.
func (r *Report) Log(logger *zap.Logger) {
	for _, w := range r.Warnings {
		logger.Warn(w)
	}
	for _, e := range r.Errors {
		logger.Error("file skipped", zap.String("file", e.File), zap.Error(e.Err))
	}
}
