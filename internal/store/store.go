// Package store implements Postgres persistence for courses and admin
// accounts using pgx. Course uniqueness is enforced here by the
// course_id primary key: a duplicate insert is skipped, never an
// overwrite.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"course-admin/internal/course"
)

// DBTX is the database interface used by the stores.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

// CourseStore persists canonical course records.
type CourseStore struct {
	db DBTX
}

// NewCourseStore creates a CourseStore over the given connection.
func NewCourseStore(db DBTX) *CourseStore {
	return &CourseStore{db: db}
}

const courseColumns = "course_id, title, category, description, instructor, duration, created_at, updated_at"

// FindOne returns the course with the given course_id, or
// course.ErrNotFound.
func (s *CourseStore) FindOne(ctx context.Context, courseID string) (*course.Course, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE course_id = $1",
		courseID,
	)

	var c course.Course
	err := row.Scan(&c.CourseID, &c.Title, &c.Category, &c.Description,
		&c.Instructor, &c.Duration, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, course.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find course %q: %w", courseID, err)
	}
	return &c, nil
}

// FindAll returns every course, oldest first.
func (s *CourseStore) FindAll(ctx context.Context) ([]course.Course, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+courseColumns+" FROM courses ORDER BY created_at, course_id")
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var out []course.Course
	for rows.Next() {
		var c course.Course
		if err := rows.Scan(&c.CourseID, &c.Title, &c.Category, &c.Description,
			&c.Instructor, &c.Duration, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

// InsertMany bulk-inserts records unordered: each insert is atomic on
// its own and a duplicate course_id skips only that record
// (ON CONFLICT DO NOTHING). Returns the number of records actually
// written, which is less than len(records) when duplicates were
// skipped.
func (s *CourseStore) InsertMany(ctx context.Context, records []course.Course) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, c := range records {
		batch.Queue(`INSERT INTO courses (course_id, title, category, description, instructor, duration)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (course_id) DO NOTHING`,
			c.CourseID, c.Title, c.Category, c.Description, c.Instructor, c.Duration)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert course %q: %w", records[i].CourseID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
