package course

// transform.go turns one RawRow into a canonical Course or a RowError.
// Transformation is a pure function of the row and its index: errors
// are returned, never accumulated through shared state, so every row is
// classified independently and one bad line can never abort the batch.

import "strings"

// rowLine converts a 0-based data-row index to the 1-based CSV line
// number users see in their spreadsheet (the header occupies line 1).
func rowLine(idx int) int {
	return idx + 2
}

// transformRow validates and normalizes a single row. idx is the
// 0-based position of the row within the data section of the file.
//
// All required fields missing from the row are reported together, by
// canonical label, before any value coercion runs. Every resolved value
// is whitespace-trimmed; Category and Description fall back to their
// defaults when absent.
func transformRow(row RawRow, idx int) (Course, *RowError) {
	c := Course{Category: "General"}

	resolved := make([]string, len(courseSchema))
	found := make([]bool, len(courseSchema))
	var missing []string

	for i, spec := range courseSchema {
		v, ok := Resolve(row, spec.aliases)
		if !ok || strings.TrimSpace(v) == "" {
			if spec.required {
				missing = append(missing, spec.label)
			}
			continue
		}
		resolved[i] = strings.TrimSpace(v)
		found[i] = true
	}

	if len(missing) > 0 {
		return Course{}, &RowError{Row: rowLine(idx), Message: missingFieldsError(missing)}
	}

	for i, spec := range courseSchema {
		if !found[i] {
			continue
		}
		if err := spec.assign(&c, resolved[i]); err != nil {
			return Course{}, &RowError{Row: rowLine(idx), Message: err.Error()}
		}
	}

	return c, nil
}
