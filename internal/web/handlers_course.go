package web

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"course-admin/internal/course"
	"course-admin/internal/logging"
)

// uploadResponse is the body returned for a processed CSV upload.
// Counts let the caller reconcile partial success: inserted + skipped
// equals total_valid, and errors lists the malformed rows.
type uploadResponse struct {
	Message    string            `json:"message"`
	TotalValid int               `json:"total_valid"`
	Inserted   int               `json:"inserted"`
	Skipped    int               `json:"skipped"`
	Errors     []course.RowError `json:"errors"`
}

type courseListResponse struct {
	Data  []course.Course `json:"data"`
	Count int             `json:"count"`
}

// handleUploadCourses ingests a CSV file from a multipart form field
// named "file". Content-type screening happens here; everything past
// the raw bytes is the ingestion pipeline's job.
func (s *Server) handleUploadCourses(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form", "UPLOAD_INVALID")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "csv file is required", "UPLOAD_NO_FILE")
		return
	}
	defer file.Close()

	if !isCSVUpload(header.Filename, header.Header.Get("Content-Type")) {
		writeError(w, http.StatusBadRequest, "only csv files are allowed", "UPLOAD_NOT_CSV")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file", "UPLOAD_READ")
		return
	}

	logging.FromContext(r.Context()).Info("processing course upload",
		"filename", header.Filename,
		"size", len(data),
	)

	result, err := s.courses.Ingest(r.Context(), data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []course.RowError{}
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Message:    "course upload processed",
		TotalValid: result.TotalValid,
		Inserted:   result.Inserted,
		Skipped:    result.Skipped,
		Errors:     errs,
	})
}

// handleListCourses returns the full catalog, served from cache when
// possible.
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	list, fromCache, err := s.courses.GetAll(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if list == nil {
		list = []course.Course{}
	}

	setCacheHeader(w, fromCache)
	writeJSON(w, http.StatusOK, courseListResponse{Data: list, Count: len(list)})
}

// handleGetCourse returns a single course by its course_id.
func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "courseID")

	c, fromCache, err := s.courses.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	setCacheHeader(w, fromCache)
	writeJSON(w, http.StatusOK, c)
}

// setCacheHeader reports cache hit/miss for observability. The body is
// identical either way.
func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}

// isCSVUpload accepts a file by .csv extension or by the lenient MIME
// set spreadsheet tools actually send.
func isCSVUpload(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "text/csv", "application/vnd.ms-excel", "text/plain":
		return true
	}
	return false
}
