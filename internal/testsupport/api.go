package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"stockscan/internal/warehouse"
)

// Response is a scripted HTTP reply.
type Response struct {
	Status int
	Body   string
}

// RecordedScan is a scan submission received by APIServer.
type RecordedScan struct {
	Request        warehouse.ScanRequest
	IdempotencyKey string
}

// RecordedDates is a project date update received by APIServer.
type RecordedDates struct {
	ProjectID string
	Dates     warehouse.ProjectDates
}

// APIServer is a fake warehouse backend. Tag lookups answer from SetTag;
// scan and date updates answer from per-route FIFO scripts and default to
// 200 once the script is exhausted.
type APIServer struct {
	*httptest.Server

	mu      sync.Mutex
	tags    map[string]Response
	scans   []Response
	dates   []Response
	scanLog []RecordedScan
	dateLog []RecordedDates
	lookups int
}

// NewAPIServer starts a fake backend that is closed on test cleanup.
func NewAPIServer(t testing.TB) *APIServer {
	t.Helper()

	s := &APIServer{tags: make(map[string]Response)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/warehouse/tags/{tag}", s.handleTag)
	mux.HandleFunc("POST /api/v1/warehouse/scan", s.handleScan)
	mux.HandleFunc("PUT /api/v1/projects/{id}/dates", s.handleDates)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetTag scripts the lookup response for tag.
func (s *APIServer) SetTag(tag string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[tag] = Response{Status: status, Body: body}
}

// QueueScanResponse appends a reply for the next scan submission.
func (s *APIServer) QueueScanResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans = append(s.scans, Response{Status: status, Body: body})
}

// QueueDatesResponse appends a reply for the next date update.
func (s *APIServer) QueueDatesResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dates = append(s.dates, Response{Status: status, Body: body})
}

// Scans returns the received scan submissions in arrival order.
func (s *APIServer) Scans() []RecordedScan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedScan(nil), s.scanLog...)
}

// DateUpdates returns the received date updates in arrival order.
func (s *APIServer) DateUpdates() []RecordedDates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedDates(nil), s.dateLog...)
}

// Lookups returns how many tag lookups were served.
func (s *APIServer) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

func (s *APIServer) handleTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.lookups++
	resp, ok := s.tags[r.PathValue("tag")]
	s.mu.Unlock()
	if !ok {
		resp = Response{Status: http.StatusNotFound, Body: `{"detail":"Tag not found"}`}
	}
	write(w, resp)
}

func (s *APIServer) handleScan(w http.ResponseWriter, r *http.Request) {
	var req warehouse.ScanRequest
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)

	s.mu.Lock()
	s.scanLog = append(s.scanLog, RecordedScan{Request: req, IdempotencyKey: r.Header.Get("Idempotency-Key")})
	resp := next(&s.scans)
	s.mu.Unlock()
	write(w, resp)
}

func (s *APIServer) handleDates(w http.ResponseWriter, r *http.Request) {
	var dates warehouse.ProjectDates
	_ = json.NewDecoder(r.Body).Decode(&dates)

	s.mu.Lock()
	s.dateLog = append(s.dateLog, RecordedDates{ProjectID: r.PathValue("id"), Dates: dates})
	resp := next(&s.dates)
	s.mu.Unlock()
	write(w, resp)
}

func next(script *[]Response) Response {
	if len(*script) == 0 {
		return Response{Status: http.StatusOK, Body: `{"ok":true}`}
	}
	resp := (*script)[0]
	*script = (*script)[1:]
	return resp
}

func write(w http.ResponseWriter, resp Response) {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	if strings.HasPrefix(strings.TrimSpace(resp.Body), "{") || strings.HasPrefix(strings.TrimSpace(resp.Body), "[") {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}
