package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/lesson"
	"ohms_lab/internal/models"
	"ohms_lab/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockSessions struct {
	token     string
	snap      models.LabSnapshot
	createErr error
	parseID   string
	parseErr  error
	endErr    error

	lastParseToken string
	lastEndID      string
}

func (m *mockSessions) Create(ctx context.Context) (string, models.LabSnapshot, error) {
	return m.token, m.snap, m.createErr
}
func (m *mockSessions) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockSessions) End(ctx context.Context, sessionID string) error {
	m.lastEndID = sessionID
	return m.endErr
}
func (m *mockSessions) Count() int { return 1 }

type mockLab struct {
	snap models.LabSnapshot
	err  error
	svg  string

	lastSessionID  string
	lastSection    string
	lastVoltage    float64
	lastResistance float64
	lastItem       string
	triggerCalls   int
	resetCalls     int
}

func (m *mockLab) Snapshot(ctx context.Context, sessionID string) (models.LabSnapshot, error) {
	m.lastSessionID = sessionID
	return m.snap, m.err
}
func (m *mockLab) SelectSection(ctx context.Context, sessionID, section string) (models.LabSnapshot, error) {
	m.lastSessionID, m.lastSection = sessionID, section
	return m.snap, m.err
}
func (m *mockLab) SetCircuit(ctx context.Context, sessionID string, voltage, resistance float64) (models.LabSnapshot, error) {
	m.lastSessionID, m.lastVoltage, m.lastResistance = sessionID, voltage, resistance
	return m.snap, m.err
}
func (m *mockLab) TriggerShort(ctx context.Context, sessionID string) (models.LabSnapshot, error) {
	m.triggerCalls++
	return m.snap, m.err
}
func (m *mockLab) ResetShort(ctx context.Context, sessionID string) (models.LabSnapshot, error) {
	m.resetCalls++
	return m.snap, m.err
}
func (m *mockLab) ToggleQuiz(ctx context.Context, sessionID, itemID string) (models.LabSnapshot, error) {
	m.lastItem = itemID
	return m.snap, m.err
}
func (m *mockLab) CircuitChart(ctx context.Context, sessionID string, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.svg)
	return err
}

type mockNarration struct {
	res     narration.Result
	err     error
	lastReq service.NarrationRequest
	calls   int
}

func (m *mockNarration) Narrate(ctx context.Context, sessionID string, req service.NarrationRequest) (narration.Result, error) {
	m.calls++
	m.lastReq = req
	return m.res, m.err
}

type mockLessons struct {
	content *lesson.Content
}

func (m *mockLessons) Lesson() *lesson.Content { return m.content }

type mockEventLog struct {
	resp  []models.LabEvent
	err   error
	last  service.LogFilter
	calls int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.LabEvent, error) {
	m.last = f
	m.calls++
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// do performs a request against r with an optional bearer token and JSON body.
func do(r http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}
