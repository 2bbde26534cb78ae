package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/dto"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/service"
	"github.com/medrhouma/Projet-d-integration-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
}

const testSessionID = "11111111-1111-1111-1111-111111111111"

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock PlacementService ──

type mockPlacementService struct {
	createResult *dto.SessionResponse
	createErr    error
	getResult    *dto.SessionResponse
	getErr       error
	deleteErr    error
	bulkResult   *dto.BulkDeleteSessionsResponse
	bulkErr      error

	lastCaller string
}

func (m *mockPlacementService) Create(_ context.Context, _ *dto.CreateSessionRequest, callerID string) (*dto.SessionResponse, error) {
	m.lastCaller = callerID
	return m.createResult, m.createErr
}
func (m *mockPlacementService) GetByID(_ context.Context, _ string) (*dto.SessionResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPlacementService) Delete(_ context.Context, _ string, callerID string) error {
	m.lastCaller = callerID
	return m.deleteErr
}
func (m *mockPlacementService) BulkDelete(_ context.Context, _ *dto.BulkDeleteSessionsRequest, _ string) (*dto.BulkDeleteSessionsResponse, error) {
	return m.bulkResult, m.bulkErr
}

// ── Mock ScheduleViewService ──

type mockScheduleViewService struct {
	listResult []dto.SessionResponse
	listErr    error
	weekResult *dto.WeekGridResponse
	weekErr    error
}

func (m *mockScheduleViewService) List(_ context.Context, _ *dto.SessionListRequest) ([]dto.SessionResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockScheduleViewService) WeekGrid(_ context.Context, _ *dto.WeekGridRequest) (*dto.WeekGridResponse, error) {
	return m.weekResult, m.weekErr
}

// ── Mock TimeSlotService ──

type mockTimeSlotService struct {
	result *dto.TimeSlotListResponse
}

func (m *mockTimeSlotService) List() *dto.TimeSlotListResponse { return m.result }

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportWeekGrid(_ context.Context, _ *dto.WeekGridRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportICS(_ context.Context, _ *dto.SessionListRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
}

func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, target string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func validCreateBody() dto.CreateSessionRequest {
	teacher := "33333333-3333-3333-3333-333333333333"
	return dto.CreateSessionRequest{
		Date:      "2025-03-10",
		StartTime: "08:30",
		EndTime:   "10:00",
		SubjectID: "44444444-4444-4444-4444-444444444444",
		GroupID:   "55555555-5555-5555-5555-555555555555",
		TeacherID: &teacher,
	}
}

// ═══════════════════════════════════════════════════════════
// TimeSlotHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTimeSlotHandler_ListTimeSlots(t *testing.T) {
	mock := &mockTimeSlotService{result: &dto.TimeSlotListResponse{
		Days:  []string{"周一"},
		Slots: []dto.SlotBrief{{Index: 0, StartTime: "08:30", EndTime: "10:00"}},
	}}
	h := NewTimeSlotHandler(mock)

	r := gin.New()
	r.GET("/time-slots", h.ListTimeSlots)
	w := serve(r, "GET", "/time-slots", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"start_time":"08:30"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// SessionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSessionHandler_CreateSession_Success(t *testing.T) {
	mock := &mockPlacementService{createResult: &dto.SessionResponse{ID: testSessionID, Date: "2025-03-10"}}
	h := NewSessionHandler(mock, &mockScheduleViewService{})

	r := gin.New()
	r.POST("/sessions", withAuth(h.CreateSession))
	w := serve(r, "POST", "/sessions", jsonBody(validCreateBody()))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.lastCaller != "test-user-id" {
		t.Errorf("expected caller test-user-id, got %s", mock.lastCaller)
	}
}

func TestSessionHandler_CreateSession_AcceptsTimestamps(t *testing.T) {
	mock := &mockPlacementService{createResult: &dto.SessionResponse{ID: testSessionID}}
	h := NewSessionHandler(mock, &mockScheduleViewService{})
	body := validCreateBody()
	body.StartTime = "2025-03-10T08:30:00Z"
	body.EndTime = "2025-03-10T10:00:00.000Z"

	r := gin.New()
	r.POST("/sessions", withAuth(h.CreateSession))
	w := serve(r, "POST", "/sessions", jsonBody(body))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSessionHandler_CreateSession_BindingErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CreateSessionRequest)
	}{
		{"BadDate", func(r *dto.CreateSessionRequest) { r.Date = "10/03/2025" }},
		{"BadTime", func(r *dto.CreateSessionRequest) { r.StartTime = "8h30" }},
		{"MissingGroup", func(r *dto.CreateSessionRequest) { r.GroupID = "" }},
		{"BadRoomID", func(r *dto.CreateSessionRequest) { bad := "R1"; r.RoomID = &bad }},
		{"NegativeSlot", func(r *dto.CreateSessionRequest) { idx := -1; r.SlotIndex = &idx }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPlacementService{}
			h := NewSessionHandler(mock, &mockScheduleViewService{})
			body := validCreateBody()
			tt.mutate(&body)

			r := gin.New()
			r.POST("/sessions", withAuth(h.CreateSession))
			w := serve(r, "POST", "/sessions", jsonBody(body))

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if resp := parseResponse(w); resp.Code != 10001 {
				t.Errorf("expected code 10001, got %d", resp.Code)
			}
		})
	}
}

func TestSessionHandler_CreateSession_BadJSON(t *testing.T) {
	h := NewSessionHandler(&mockPlacementService{}, &mockScheduleViewService{})

	r := gin.New()
	r.POST("/sessions", withAuth(h.CreateSession))
	w := serve(r, "POST", "/sessions", bytes.NewReader([]byte("bad")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionHandler_CreateSession_Unauthenticated(t *testing.T) {
	h := NewSessionHandler(&mockPlacementService{}, &mockScheduleViewService{})

	r := gin.New()
	r.POST("/sessions", h.CreateSession)
	w := serve(r, "POST", "/sessions", jsonBody(validCreateBody()))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestSessionHandler_CreateSession_Conflict(t *testing.T) {
	mock := &mockPlacementService{createErr: &service.PlacementConflictError{Conflicts: []service.Conflict{
		{Kind: service.ConflictRoom, SessionID: "E1", Message: "教室冲突"},
		{Kind: service.ConflictTeacher, SessionID: "E1", Message: "教师冲突"},
	}}}
	h := NewSessionHandler(mock, &mockScheduleViewService{})

	r := gin.New()
	r.POST("/sessions", withAuth(h.CreateSession))
	w := serve(r, "POST", "/sessions", jsonBody(validCreateBody()))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	var body struct {
		Code int                           `json:"code"`
		Data dto.PlacementConflictResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Code != 17002 {
		t.Errorf("expected code 17002, got %d", body.Code)
	}
	if len(body.Data.Conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(body.Data.Conflicts))
	}
	if body.Data.Conflicts[0].Kind != "room" || body.Data.Conflicts[1].Kind != "teacher" {
		t.Errorf("unexpected kinds: %+v", body.Data.Conflicts)
	}
}

func TestSessionHandler_CreateSession_ValidationError(t *testing.T) {
	mock := &mockPlacementService{createErr: &service.ValidationError{Field: "end_time", Message: "结束时间必须晚于开始时间"}}
	h := NewSessionHandler(mock, &mockScheduleViewService{})

	r := gin.New()
	r.POST("/sessions", withAuth(h.CreateSession))
	w := serve(r, "POST", "/sessions", jsonBody(validCreateBody()))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 17001 || !strings.Contains(resp.Details, "end_time") {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSessionHandler_GetSession_InvalidID(t *testing.T) {
	h := NewSessionHandler(&mockPlacementService{}, &mockScheduleViewService{})

	r := gin.New()
	r.GET("/sessions/:id", h.GetSession)
	w := serve(r, "GET", "/sessions/not-a-uuid", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionHandler_GetSession_Success(t *testing.T) {
	mock := &mockPlacementService{getResult: &dto.SessionResponse{ID: testSessionID}}
	h := NewSessionHandler(mock, &mockScheduleViewService{})

	r := gin.New()
	r.GET("/sessions/:id", h.GetSession)
	w := serve(r, "GET", "/sessions/"+testSessionID, nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSessionHandler_DeleteSession(t *testing.T) {
	mock := &mockPlacementService{}
	h := NewSessionHandler(mock, &mockScheduleViewService{})

	r := gin.New()
	r.DELETE("/sessions/:id", withAuth(h.DeleteSession))

	w := serve(r, "DELETE", "/sessions/"+testSessionID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	mock.deleteErr = service.ErrSessionNotFound
	w = serve(r, "DELETE", "/sessions/"+testSessionID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 17003 {
		t.Errorf("expected code 17003, got %d", resp.Code)
	}
}

func TestSessionHandler_BulkDelete_Success(t *testing.T) {
	mock := &mockPlacementService{bulkResult: &dto.BulkDeleteSessionsResponse{Deleted: 1}}
	h := NewSessionHandler(mock, &mockScheduleViewService{})

	r := gin.New()
	r.POST("/sessions/bulk-delete", withAuth(h.BulkDeleteSessions))
	w := serve(r, "POST", "/sessions/bulk-delete", jsonBody(dto.BulkDeleteSessionsRequest{IDs: []string{testSessionID}}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSessionHandler_BulkDelete_Missing(t *testing.T) {
	mock := &mockPlacementService{bulkErr: &service.MissingSessionsError{IDs: []string{testSessionID}}}
	h := NewSessionHandler(mock, &mockScheduleViewService{})

	r := gin.New()
	r.POST("/sessions/bulk-delete", withAuth(h.BulkDeleteSessions))
	w := serve(r, "POST", "/sessions/bulk-delete", jsonBody(dto.BulkDeleteSessionsRequest{IDs: []string{testSessionID}}))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), testSessionID) {
		t.Errorf("expected missing id in body: %s", w.Body.String())
	}
}

func TestSessionHandler_BulkDelete_EmptyIDs(t *testing.T) {
	h := NewSessionHandler(&mockPlacementService{}, &mockScheduleViewService{})

	r := gin.New()
	r.POST("/sessions/bulk-delete", withAuth(h.BulkDeleteSessions))
	w := serve(r, "POST", "/sessions/bulk-delete", jsonBody(dto.BulkDeleteSessionsRequest{IDs: []string{}}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionHandler_ListSessions(t *testing.T) {
	mock := &mockScheduleViewService{listResult: []dto.SessionResponse{{ID: "a"}, {ID: "b"}}}
	h := NewSessionHandler(&mockPlacementService{}, mock)

	r := gin.New()
	r.GET("/sessions", h.ListSessions)

	w := serve(r, "GET", "/sessions?from=2025-03-10&to=2025-03-16", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = serve(r, "GET", "/sessions?from=2025-03-10", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without to, got %d", w.Code)
	}
}

func TestSessionHandler_GetWeekGrid(t *testing.T) {
	mock := &mockScheduleViewService{weekResult: &dto.WeekGridResponse{WeekStart: "2025-03-10"}}
	h := NewSessionHandler(&mockPlacementService{}, mock)

	r := gin.New()
	r.GET("/sessions/week", h.GetWeekGrid)

	w := serve(r, "GET", "/sessions/week?week=2025-03-12", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"week_start":"2025-03-10"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}

	w = serve(r, "GET", "/sessions/week?week=2025-13-01", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid week, got %d", w.Code)
	}
}

func TestSessionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"Validation", &service.ValidationError{Field: "reference", Message: "引用的资源不存在"}, 400, 17001},
		{"Conflict", &service.PlacementConflictError{}, 409, 17002},
		{"NotFound", service.ErrSessionNotFound, 404, 17003},
		{"TooMany", service.ErrBulkDeleteTooMany, 400, 17004},
		{"Store", fmt.Errorf("%w: %w", service.ErrSessionStore, errors.New("db down")), 500, 50000},
		{"Unknown", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPlacementService{getErr: tt.err}
			h := NewSessionHandler(mock, &mockScheduleViewService{})

			r := gin.New()
			r.GET("/sessions/:id", h.GetSession)
			w := serve(r, "GET", "/sessions/"+testSessionID, nil)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportWeekGrid_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("excel content"), filename: "课表_2025-03-10.xlsx"}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/week.xlsx", h.ExportWeekGrid)
	w := serve(r, "GET", "/export/week.xlsx?week=2025-03-10", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
}

func TestExportHandler_ExportWeekGrid_MissingWeek(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	r := gin.New()
	r.GET("/export/week.xlsx", h.ExportWeekGrid)
	w := serve(r, "GET", "/export/week.xlsx", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_ExportICS(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("BEGIN:VCALENDAR"), filename: "课表.ics"}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/sessions.ics", h.ExportICS)
	w := serve(r, "GET", "/export/sessions.ics?from=2025-03-10&to=2025-03-16", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeICS {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestExportHandler_ExportError(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportGenerate})

	r := gin.New()
	r.GET("/export/week.xlsx", h.ExportWeekGrid)
	w := serve(r, "GET", "/export/week.xlsx?week=2025-03-10", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
