package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"video-analyzer/core/models"
	"video-analyzer/core/notify"
	"video-analyzer/core/store"
	"video-analyzer/core/validate"
)

// fakeRunner records pipeline starts without doing any work.
type fakeRunner struct {
	started chan *models.Job
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{started: make(chan *models.Job, 1)}
}

func (f *fakeRunner) Run(_ context.Context, job *models.Job) {
	f.started <- job
}

type env struct {
	router         *mux.Router
	store          *store.ResultStore
	hub            *notify.Hub
	runner         *fakeRunner
	screenshotsDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:          store.New(t.TempDir()),
		hub:            notify.NewHub(),
		runner:         newFakeRunner(),
		screenshotsDir: t.TempDir(),
	}

	logger := zap.NewNop()
	analyzeHandler := NewAnalyzeHandler(e.store, e.runner, validate.NewValidator(nil), logger)
	resultHandler := NewResultHandler(e.store, e.screenshotsDir, logger)
	subscribeHandler := NewSubscribeHandler(e.hub, logger)

	e.router = mux.NewRouter()
	e.router.HandleFunc("/analyze", analyzeHandler.Analyze).Methods("POST")
	e.router.HandleFunc("/result/{id}", resultHandler.GetResult).Methods("GET")
	e.router.HandleFunc("/result/{id}/screenshot", resultHandler.GetScreenshot).Methods("GET")
	e.router.HandleFunc("/subscribe/{id}", subscribeHandler.Subscribe).Methods("GET")
	e.router.HandleFunc("/health", Health).Methods("GET")
	return e
}

func (e *env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeStartsJob(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/analyze", `{"url":"https://www.youtube.com/watch?v=abc123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "started", resp.Status)
	assert.Contains(t, resp.Message, "GET /result/:id")

	// Initial record is persisted before the response.
	job, err := e.store.Read(resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, job.Status)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", job.URL)

	// The pipeline was started asynchronously for that job.
	select {
	case started := <-e.runner.started:
		assert.Equal(t, resp.JobID, started.ID)
	case <-time.After(time.Second):
		t.Fatal("pipeline was never started")
	}
}

func TestAnalyzeRejectsNonWhitelistedURL(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/analyze", `{"url":"https://example.com/video"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No job record and no pipeline start.
	select {
	case <-e.runner.started:
		t.Fatal("pipeline started for invalid URL")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAnalyzeRejectsMissingURL(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/analyze", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResultNotFound(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/result/unknown-id", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body notFoundBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unknown-id", body.JobID)
	assert.Equal(t, models.StatusNotFound, body.Status)
	assert.NotEmpty(t, body.Error)
}

func TestGetResultReturnsStoredRecord(t *testing.T) {
	e := newEnv(t)

	job := models.NewJob("job-1", "https://youtu.be/abc123")
	job.SetStageOutput(models.StageScreenshot, "/result/job-1/screenshot")
	job.Status = models.JobStatusCompleted
	require.NoError(t, e.store.Create(job.ID, job))

	rec := e.do(t, http.MethodGet, "/result/job-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	// The stored status is served as-is, not re-derived.
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, "/result/job-1/screenshot", got.StageOutputs[models.StageScreenshot])
}

func TestGetScreenshot(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/result/job-1/screenshot", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	png := []byte{0x89, 0x50, 0x4e, 0x47}
	require.NoError(t, os.WriteFile(filepath.Join(e.screenshotsDir, "job-1.png"), png, 0o644))

	rec = e.do(t, http.MethodGet, "/result/job-1/screenshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"])
	assert.NoError(t, err)
}

func TestSubscribeReceivesNotifications(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/subscribe/job-1"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Give the server loop a moment to register the subscriber.
	time.Sleep(100 * time.Millisecond)

	e.hub.Publish("job-2", "not yours")
	e.hub.Publish("job-1", "Screenshot captured")

	// The first frame delivered is job-1's: the earlier job-2 message
	// never reaches this connection.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg notify.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "job-1", msg.JobID)
	assert.Equal(t, "Screenshot captured", msg.Message)
}
