package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"course-admin/internal/auth"
	"course-admin/internal/config"
	"course-admin/internal/course"
	"course-admin/internal/store"
)

// stubStore implements course.Store in memory.
type stubStore struct {
	records map[string]course.Course
	order   []string
}

func newStubStore() *stubStore {
	return &stubStore{records: make(map[string]course.Course)}
}

func (s *stubStore) FindOne(ctx context.Context, id string) (*course.Course, error) {
	c, ok := s.records[id]
	if !ok {
		return nil, course.ErrNotFound
	}
	return &c, nil
}

func (s *stubStore) FindAll(ctx context.Context) ([]course.Course, error) {
	out := make([]course.Course, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *stubStore) InsertMany(ctx context.Context, records []course.Course) (int, error) {
	inserted := 0
	for _, c := range records {
		if _, exists := s.records[c.CourseID]; exists {
			continue
		}
		s.records[c.CourseID] = c
		s.order = append(s.order, c.CourseID)
		inserted++
	}
	return inserted, nil
}

// stubCache implements course.Cache in memory.
type stubCache struct {
	data map[string]string
}

func newStubCache() *stubCache { return &stubCache{data: make(map[string]string)} }

func (c *stubCache) IsConnected() bool { return true }

func (c *stubCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *stubCache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	c.data[key] = value
	return true
}

// stubAdmins implements AdminDirectory in memory.
type stubAdmins struct {
	byEmail map[string]*store.Admin
}

func newStubAdmins() *stubAdmins { return &stubAdmins{byEmail: make(map[string]*store.Admin)} }

func (s *stubAdmins) FindByEmail(ctx context.Context, email string) (*store.Admin, error) {
	a, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrAdminNotFound
	}
	return a, nil
}

func (s *stubAdmins) Create(ctx context.Context, email, name, passwordHash string) (*store.Admin, error) {
	if _, exists := s.byEmail[email]; exists {
		return nil, store.ErrEmailTaken
	}
	a := &store.Admin{ID: uuid.New(), Email: email, Name: name, PasswordHash: passwordHash, CreatedAt: time.Now()}
	s.byEmail[email] = a
	return a, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = time.Minute
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func newTestServer() (*Server, *stubStore) {
	st := newStubStore()
	svc := course.NewService(st, newStubCache())
	return NewServer(svc, newStubAdmins(), auth.NewTokens("test-secret", time.Hour), testConfig()), st
}

func bearer(s *Server) string {
	token, _ := s.tokens.Issue(uuid.NewString(), "admin@example.com")
	return "Bearer " + token
}

func doJSON(s *Server, method, path, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func doUpload(s *Server, filename, csvBody, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", filename)
	fw.Write([]byte(csvBody))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/courses/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/auth/register",
		`{"email":"a@example.com","name":"Ada","password":"longenough"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}

	var reg authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if reg.Token == "" {
		t.Error("register response has no token")
	}
	if reg.User.Email != "a@example.com" {
		t.Errorf("User.Email = %q, want %q", reg.User.Email, "a@example.com")
	}

	rec = doJSON(s, http.MethodPost, "/api/auth/login",
		`{"email":"a@example.com","password":"longenough"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestServer()

	tests := []struct {
		name string
		body string
	}{
		{name: "short password", body: `{"email":"a@example.com","name":"Ada","password":"short"}`},
		{name: "bad email", body: `{"email":"nope","name":"Ada","password":"longenough"}`},
		{name: "missing name", body: `{"email":"a@example.com","password":"longenough"}`},
		{name: "not json", body: `email=a@example.com`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(s, http.MethodPost, "/api/auth/register", tt.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _ := newTestServer()
	body := `{"email":"a@example.com","name":"Ada","password":"longenough"}`

	if rec := doJSON(s, http.MethodPost, "/api/auth/register", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	rec := doJSON(s, http.MethodPost, "/api/auth/register", body, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("second register status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s, _ := newTestServer()

	doJSON(s, http.MethodPost, "/api/auth/register",
		`{"email":"a@example.com","name":"Ada","password":"longenough"}`, "")

	tests := []struct {
		name string
		body string
	}{
		{name: "wrong password", body: `{"email":"a@example.com","password":"wrongwrong"}`},
		{name: "unknown email", body: `{"email":"b@example.com","password":"longenough"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(s, http.MethodPost, "/api/auth/login", tt.body, "")
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestCourses_RequireAuth(t *testing.T) {
	s, _ := newTestServer()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/courses/"},
		{http.MethodGet, "/api/courses/C1"},
	}

	for _, p := range paths {
		rec := doJSON(s, p.method, p.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want %d", p.method, p.path, rec.Code, http.StatusUnauthorized)
		}
	}

	if rec := doUpload(s, "c.csv", "a,b\n1,2\n", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("upload without token status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	if rec := doJSON(s, http.MethodGet, "/api/courses/", "", "Bearer garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

const testCSV = "Unique ID,Course Name,Professor Name,Duration (Months)\n" +
	"C1,Intro,Dr. A,3\n" +
	"C2,Algebra,,4\n"

func TestUpload_PartialSuccess(t *testing.T) {
	s, st := newTestServer()

	rec := doUpload(s, "courses.csv", testCSV, bearer(s))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body)
	}

	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.TotalValid != 1 || resp.Inserted != 1 || resp.Skipped != 0 {
		t.Errorf("counts = %+v", resp)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Row != 3 {
		t.Errorf("Errors = %+v, want one error at row 3", resp.Errors)
	}
	if _, ok := st.records["C1"]; !ok {
		t.Error("C1 was not persisted")
	}
}

func TestUpload_DuplicatesSkippedOnRerun(t *testing.T) {
	s, _ := newTestServer()
	token := bearer(s)

	if rec := doUpload(s, "courses.csv", testCSV, token); rec.Code != http.StatusOK {
		t.Fatalf("first upload status = %d", rec.Code)
	}

	rec := doUpload(s, "courses.csv", testCSV, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("second upload status = %d", rec.Code)
	}

	var resp uploadResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Inserted != 0 || resp.Skipped != 1 {
		t.Errorf("second upload counts = %+v, want inserted 0 skipped 1", resp)
	}
}

func TestUpload_Rejections(t *testing.T) {
	s, _ := newTestServer()
	token := bearer(s)

	tests := []struct {
		name     string
		filename string
		body     string
	}{
		{name: "not csv", filename: "data.bin", body: "whatever"},
		{name: "empty file", filename: "c.csv", body: ""},
		{name: "header only", filename: "c.csv", body: "a,b\n"},
		{name: "all rows invalid", filename: "c.csv", body: "Unique ID,Course Name\nC1,NoProf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doUpload(s, tt.filename, tt.body, token)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body)
			}
		})
	}
}

func TestGetCourse(t *testing.T) {
	s, st := newTestServer()
	token := bearer(s)
	st.InsertMany(context.Background(), []course.Course{
		{CourseID: "C1", Title: "Go", Category: "General", Instructor: "Dr. A", Duration: 3},
	})

	rec := doJSON(s, http.MethodGet, "/api/courses/C1", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}

	var c course.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode course: %v", err)
	}
	if c.CourseID != "C1" || c.Title != "Go" {
		t.Errorf("course = %+v", c)
	}

	// Second read is served from cache, body unchanged.
	rec = doJSON(s, http.MethodGet, "/api/courses/C1", "", token)
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", got)
	}
}

func TestGetCourse_NotFound(t *testing.T) {
	s, _ := newTestServer()

	rec := doJSON(s, http.MethodGet, "/api/courses/missing", "", bearer(s))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListCourses_EmptyIsArray(t *testing.T) {
	s, _ := newTestServer()

	rec := doJSON(s, http.MethodGet, "/api/courses/", "", bearer(s))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty data array", rec.Body)
	}
}
