package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/shifthandoff/internal/config"
	"github.com/ehr/shifthandoff/internal/platform/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Env:               "test",
		LogLevel:          "info",
		CORSOrigins:       []string{"http://localhost:3000"},
		ShiftTimezone:     "UTC",
		AssistantRandSeed: 1,
		SpeechLanguage:    "en-US",
		ClockTick:         time.Second,
		BodyLimit:         "1M",
		RequestTimeout:    5 * time.Second,
		RateLimitRPS:      1000,
		RateLimitBurst:    1000,
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	a, err := newApp(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.hub.Close)
	return a
}

func do(t *testing.T, a *app, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doAs(t, a, "", method, path, body)
}

func doAs(t *testing.T, a *app, nurseID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if nurseID != "" {
		req.Header.Set(middleware.NurseIDHeader, nurseID)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("expected security headers on every response")
	}
}

func TestPatients_RankedCensus(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodGet, "/api/v1/patients", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var ids []string
	for _, p := range body.Data {
		ids = append(ids, p.ID)
	}
	want := "6,1,3,5,2,4"
	if got := strings.Join(ids, ","); got != want || body.Total != 6 {
		t.Errorf("census order %s (total %d), want %s", got, body.Total, want)
	}
}

func TestHandoffFlow(t *testing.T) {
	a := newTestApp(t)

	if rec := do(t, a, http.MethodPost, "/api/v1/patients/1/shifts", ""); rec.Code != http.StatusCreated {
		t.Fatalf("start shift: %d %s", rec.Code, rec.Body.String())
	}
	rec := do(t, a, http.MethodPost, "/api/v1/patients/1/handoff/entries", `{"category":"vitals","content":"BP 120/80, HR 72"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record entry: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, a, http.MethodGet, "/api/v1/patients/1/handoff", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("report: %d %s", rec.Code, rec.Body.String())
	}
	var report struct {
		PatientName       string `json:"patient_name"`
		CompletionPercent int    `json:"completion_percent"`
		Completion        struct {
			Vitals     bool `json:"vitals"`
			Assessment bool `json:"assessment"`
		} `json:"completion"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.PatientName != "Sarah Johnson" || report.CompletionPercent != 17 {
		t.Errorf("unexpected report: %+v", report)
	}
	if !report.Completion.Vitals || report.Completion.Assessment {
		t.Errorf("only vitals should be complete: %+v", report.Completion)
	}

	if rec := do(t, a, http.MethodPost, "/api/v1/patients/1/handoff/complete", ""); rec.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, a, http.MethodPost, "/api/v1/patients/1/handoff/entries", `{"category":"alerts","content":"late"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("entry after completion: expected 409, got %d", rec.Code)
	}
}

func TestChartActivityFlow(t *testing.T) {
	a := newTestApp(t)

	rec := doAs(t, a, "n-2", http.MethodPost, "/api/v1/patients/1/notes", `{"note":"Family at bedside","category":"communication"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add note: %d %s", rec.Code, rec.Body.String())
	}
	if rec := doAs(t, a, "n-2", http.MethodPost, "/api/v1/patients/1/notes", `{"note":"   "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank note: expected 400, got %d", rec.Code)
	}
	vitals := `{"temperature":98.6,"heart_rate":72,"systolic":120,"diastolic":80,"respiratory_rate":16,"oxygen_saturation":98,"pain_level":2}`
	if rec := doAs(t, a, "n-1", http.MethodPost, "/api/v1/patients/1/vitals", vitals); rec.Code != http.StatusCreated {
		t.Fatalf("record vitals: %d %s", rec.Code, rec.Body.String())
	}
	if rec := doAs(t, a, "n-1", http.MethodPost, "/api/v1/patients/1/shifts", ""); rec.Code != http.StatusCreated {
		t.Fatalf("start shift: %d %s", rec.Code, rec.Body.String())
	}
	if rec := doAs(t, a, "n-1", http.MethodPost, "/api/v1/patients/1/handoff/review", ""); rec.Code != http.StatusOK {
		t.Fatalf("review: %d %s", rec.Code, rec.Body.String())
	}
	if rec := doAs(t, a, "n-1", http.MethodPost, "/api/v1/patients/1/handoff/review", ""); rec.Code != http.StatusConflict {
		t.Errorf("second review: expected 409, got %d", rec.Code)
	}

	rec = do(t, a, http.MethodGet, "/api/v1/patients/1/activity", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("activity: %d %s", rec.Code, rec.Body.String())
	}
	var log struct {
		Data []struct {
			NurseID  string `json:"nurse_id"`
			Action   string `json:"action"`
			Category string `json:"category"`
		} `json:"data"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &log); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if log.Total != 4 || len(log.Data) != 4 {
		t.Fatalf("expected 4 activity entries, got %d", log.Total)
	}
	if log.Data[3].Action != "Added nursing note" || log.Data[3].NurseID != "n-2" {
		t.Errorf("oldest entry = %+v", log.Data[3])
	}
	if log.Data[2].Category != "vitals" || log.Data[2].NurseID != "n-1" {
		t.Errorf("vitals entry = %+v", log.Data[2])
	}

	rec = do(t, a, http.MethodGet, "/api/v1/patients/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("patient: %d %s", rec.Code, rec.Body.String())
	}
	var detail struct {
		NursingNotes []struct {
			Text string `json:"note"`
		} `json:"nursing_notes"`
		LastModified *struct {
			By      string   `json:"by"`
			Changes []string `json:"changes"`
		} `json:"last_modified"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.NursingNotes) == 0 || detail.NursingNotes[0].Text != "Family at bedside" {
		t.Errorf("newest note should lead: %+v", detail.NursingNotes)
	}
	if detail.LastModified == nil || detail.LastModified.By != "n-1" {
		t.Errorf("last_modified = %+v", detail.LastModified)
	}
}

func TestHandoff_UnknownPatient(t *testing.T) {
	a := newTestApp(t)
	if rec := do(t, a, http.MethodPost, "/api/v1/patients/99/shifts", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAssistant(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodPost, "/api/v1/assistant/general/messages", `{"message":"What's the blood pressure reading"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"category":"medical"`) {
		t.Errorf("expected a medical match: %s", rec.Body.String())
	}

	rec = do(t, a, http.MethodPost, "/api/v1/assistant/general/transcripts", `{"results":[{"text":"blood pressure","final":true}]}`)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("transcripts without speech: expected 501, got %d", rec.Code)
	}
}

func TestClockAndNurses(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodGet, "/api/v1/clock", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"time_zone":"UTC"`) {
		t.Errorf("clock: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, a, http.MethodGet, "/api/v1/nurses/n-1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Sarah Mitchell") {
		t.Errorf("nurse profile: %d %s", rec.Code, rec.Body.String())
	}
}

func TestSanitizeRejectsScriptQuery(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodGet, "/api/v1/patients?q=%3Cscript%3E", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPrintCensus(t *testing.T) {
	a := newTestApp(t)
	ps, err := a.patients.Ranked(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := printCensus(&buf, a.patients.Views(ps)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header plus 6 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "6 ") || !strings.Contains(lines[1], "David Martinez") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestAskCommand(t *testing.T) {
	cmd := askCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--kb", "general", "what", "is", "the", "blood", "pressure"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() == 0 {
		t.Error("expected a reply")
	}
}
