// Package course provides the course-catalog business logic: CSV bulk
// ingestion into the store and cache-aside reads. It has no HTTP
// dependencies and talks to Postgres and Redis only through the Store
// and Cache interfaces.
package course

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Course is the canonical persisted course record. CourseID is the
// natural key and is unique across the catalog.
type Course struct {
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	Duration    float64   `json:"duration"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RawRow is one parsed CSV data line, keyed by the header row verbatim
// (original casing and whitespace preserved). Rows are transient: they
// are consumed by the transformer and never stored.
type RawRow map[string]string

// RowError reports a single rejected CSV row. Row is the 1-based line
// number in the file, counting the header line.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// IngestResult summarizes a bulk ingestion. Skipped counts records that
// were valid but already present (duplicate course_id); Errors holds the
// malformed rows. Inserted + Skipped == TotalValid.
type IngestResult struct {
	TotalValid int        `json:"total_valid"`
	Inserted   int        `json:"inserted"`
	Skipped    int        `json:"skipped"`
	Errors     []RowError `json:"errors"`
}

var (
	// ErrNotFound is returned by lookups when no course matches.
	ErrNotFound = errors.New("course not found")

	// ErrEmptyInput is returned when the CSV contains no data rows.
	ErrEmptyInput = errors.New("csv file is empty or invalid")

	// ErrParse is returned when the byte stream is not decodable as CSV.
	ErrParse = errors.New("malformed csv")
)

// NoValidRowsError is returned when every row failed transformation.
// It carries the per-row errors so callers can report them.
type NoValidRowsError struct {
	Errors []RowError
}

func (e *NoValidRowsError) Error() string {
	return fmt.Sprintf("no valid courses found in csv (%d bad rows)", len(e.Errors))
}

// missingFieldsError formats the canonical labels of all missing
// required fields for a row.
func missingFieldsError(labels []string) string {
	return "missing required fields: " + strings.Join(labels, ", ")
}
