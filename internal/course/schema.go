package course

// schema.go declares the CSV import schema: one spec per canonical
// course field with its ordered header aliases and its coercion into
// the Course struct. The transformer iterates these specs uniformly,
// so adding a tolerated spreadsheet convention is a one-line alias
// change rather than new resolution code.

import (
	"fmt"
	"strconv"
)

// fieldSpec binds a canonical course field to the CSV headers it may
// arrive under. Label is the canonical name used in error messages,
// never the alias that happened to match. Assign coerces the resolved
// (already trimmed) value into the record.
type fieldSpec struct {
	label    string
	aliases  []string
	required bool
	assign   func(c *Course, raw string) error
}

// courseSchema lists every importable field in resolution order.
// Alias lists carry the header variants seen across spreadsheet
// exports; lowercase variants are also tried by the resolver itself.
var courseSchema = []fieldSpec{
	{
		label:    "Course ID",
		aliases:  []string{"Unique ID", "Course ID", "course_id"},
		required: true,
		assign: func(c *Course, raw string) error {
			c.CourseID = raw
			return nil
		},
	},
	{
		label:    "Title",
		aliases:  []string{"Course Name", "Title", "Course Title"},
		required: true,
		assign: func(c *Course, raw string) error {
			c.Title = raw
			return nil
		},
	},
	{
		label:    "Professor Name",
		aliases:  []string{"Professor Name", "Instructor", "Instructor Name"},
		required: true,
		assign: func(c *Course, raw string) error {
			c.Instructor = raw
			return nil
		},
	},
	{
		label:    "Duration",
		aliases:  []string{"Duration (Months)", "Duration", "Course Duration"},
		required: true,
		assign: func(c *Course, raw string) error {
			d, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid duration %q: not a number", raw)
			}
			if d <= 0 {
				return fmt.Errorf("invalid duration %q: must be greater than zero", raw)
			}
			c.Duration = d
			return nil
		},
	},
	{
		label:   "Category",
		aliases: []string{"Category", "Course Category"},
		assign: func(c *Course, raw string) error {
			c.Category = raw
			return nil
		},
	},
	{
		label:   "Description",
		aliases: []string{"Description", "Course Description"},
		assign: func(c *Course, raw string) error {
			c.Description = raw
			return nil
		},
	},
}
