package filevalidator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gobeaver/filesniff/filetype"
)

// ValidationResult contains detailed information about a validation attempt
type ValidationResult struct {
	// Valid indicates whether the file passed all validations
	Valid bool `json:"valid" yaml:"valid"`

	// Path is the path of the validated file
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes
	Size int64 `json:"size" yaml:"size"`

	// Type is the merged file type the file was validated as
	Type filetype.FileType `json:"type" yaml:"type"`

	// Rows is the number of rows read for the row checks
	Rows int `json:"rows" yaml:"rows"`

	// Errors contains all validation errors encountered
	Errors []ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Warnings contains non-blocking issues
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Duration is how long validation took
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Checks contains details about each validation check performed
	Checks []CheckResult `json:"checks" yaml:"checks"`
}

// CheckResult represents the result of a single validation check
type CheckResult struct {
	Name    string `json:"name" yaml:"name"` // e.g., "size", "dialect", "field_length"
	Passed  bool   `json:"passed" yaml:"passed"`
	Message string `json:"message" yaml:"message"`
}

// Error returns the first error if validation failed, nil if valid
func (r *ValidationResult) Error() error {
	if r.Valid || len(r.Errors) == 0 {
		return nil
	}
	return &r.Errors[0]
}

// AllErrors returns all errors as a single combined error
func (r *ValidationResult) AllErrors() error {
	if r.Valid || len(r.Errors) == 0 {
		return nil
	}

	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// Summary returns a human-readable summary of the validation
func (r *ValidationResult) Summary() string {
	if r.Valid {
		return fmt.Sprintf("✓ %s (%s, %s, %d rows) validated in %v",
			r.Path,
			r.Type,
			FormatSizeReadable(r.Size),
			r.Rows,
			r.Duration.Round(time.Microsecond),
		)
	}

	return fmt.Sprintf("✗ %s failed: %s",
		r.Path,
		r.Errors[0].Message,
	)
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// FailedChecks returns only the checks that failed
func (r *ValidationResult) FailedChecks() []CheckResult {
	var failed []CheckResult
	for _, check := range r.Checks {
		if !check.Passed {
			failed = append(failed, check)
		}
	}
	return failed
}

// ResultBuilder helps construct ValidationResult
type ResultBuilder struct {
	result    ValidationResult
	startTime time.Time
}

// NewResultBuilder creates a new result builder
func NewResultBuilder(path string, size int64) *ResultBuilder {
	return &ResultBuilder{
		result: ValidationResult{
			Valid:  true, // Assume valid until proven otherwise
			Path:   path,
			Size:   size,
			Checks: make([]CheckResult, 0),
		},
		startTime: time.Now(),
	}
}

// SetType sets the validated file type
func (b *ResultBuilder) SetType(t filetype.FileType) *ResultBuilder {
	b.result.Type = t
	return b
}

// SetRows sets the number of rows read
func (b *ResultBuilder) SetRows(n int) *ResultBuilder {
	b.result.Rows = n
	return b
}

// Pass records a passed check
func (b *ResultBuilder) Pass(name, message string) *ResultBuilder {
	b.result.Checks = append(b.result.Checks, CheckResult{Name: name, Passed: true, Message: message})
	return b
}

// Fail records a failed check together with its error
func (b *ResultBuilder) Fail(errType ValidationErrorType, message string) *ResultBuilder {
	b.result.Checks = append(b.result.Checks, CheckResult{Name: string(errType), Passed: false, Message: message})
	b.result.Valid = false
	b.result.Errors = append(b.result.Errors, ValidationError{Type: errType, Message: message})
	return b
}

// AddWarning adds a warning (non-blocking)
func (b *ResultBuilder) AddWarning(message string) *ResultBuilder {
	b.result.Warnings = append(b.result.Warnings, message)
	return b
}

// Build finalizes and returns the ValidationResult
func (b *ResultBuilder) Build() *ValidationResult {
	b.result.Duration = time.Since(b.startTime)
	return &b.result
}

// FormatSizeReadable formats a byte count with a binary unit
func FormatSizeReadable(size int64) string {
	unit, div := "B", int64(1)
	switch {
	case size >= GB:
		unit, div = "GB", GB
	case size >= MB:
		unit, div = "MB", MB
	case size >= KB:
		unit, div = "KB", KB
	default:
		return fmt.Sprintf("%d B", size)
	}

	// Round to 1 decimal place
	rounded := math.Round(float64(size)/float64(div)*10) / 10
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%.0f %s", rounded, unit)
	}
	return fmt.Sprintf("%.1f %s", rounded, unit)
}
