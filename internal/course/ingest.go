package course

// ingest.go drives the bulk import: parse the buffer, transform every
// row, then hand the valid records to the store in one unordered bulk
// insert. Malformed rows become RowErrors; duplicate course_ids are
// counted as skipped by the store, never reported as errors.

import (
	"context"
	"fmt"
	"log/slog"
)

// Ingest imports a CSV byte buffer into the catalog.
//
// Call-level failures are limited to: a buffer that cannot be decoded
// (wraps ErrParse), a file with no data rows (ErrEmptyInput), a file
// where every row is malformed (*NoValidRowsError, carrying the row
// errors), and store failures. Everything else is partial success,
// reported through the result counts.
func (s *Service) Ingest(ctx context.Context, buf []byte) (*IngestResult, error) {
	rows, err := ParseBuffer(ctx, buf)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	valid := make([]Course, 0, len(rows))
	var rowErrs []RowError

	for i, row := range rows {
		record, rerr := transformRow(row, i)
		if rerr != nil {
			rowErrs = append(rowErrs, *rerr)
			continue
		}
		valid = append(valid, record)
	}

	if len(valid) == 0 {
		return nil, &NoValidRowsError{Errors: rowErrs}
	}

	inserted, err := s.store.InsertMany(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("bulk insert: %w", err)
	}

	result := &IngestResult{
		TotalValid: len(valid),
		Inserted:   inserted,
		Skipped:    len(valid) - inserted,
		Errors:     rowErrs,
	}

	slog.InfoContext(ctx, "csv ingest complete",
		"rows", len(rows),
		"valid", result.TotalValid,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)

	return result, nil
}
