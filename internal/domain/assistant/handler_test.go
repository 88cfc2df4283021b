package assistant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/shifthandoff/internal/platform/speech"
)

func newTestHandler(speechEnabled bool) (*Handler, *echo.Echo) {
	r := NewResponder(NewRand(7), zerolog.Nop())
	return NewHandler(r, speech.NewProvider(speechEnabled, "", zerolog.Nop())), echo.New()
}

func postJSON(e *echo.Echo, body, kb string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kb")
	c.SetParamValues(kb)
	return c, rec
}

func TestHandler_SendMessage(t *testing.T) {
	h, e := newTestHandler(false)
	c, rec := postJSON(e, `{"message":"What's the blood pressure reading"}`, "general")

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var reply Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Trigger != "blood pressure" || reply.Category != CategoryMedical {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if reply.Spoken {
		t.Error("reply should not be spoken without speech synthesis")
	}
}

func TestHandler_SendMessage_UnknownKnowledgeBase(t *testing.T) {
	h, e := newTestHandler(false)
	c, _ := postJSON(e, `{"message":"hello"}`, "oncology")

	err := h.SendMessage(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_SendMessage_Empty(t *testing.T) {
	h, e := newTestHandler(false)
	c, _ := postJSON(e, `{"message":""}`, "general")

	err := h.SendMessage(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_SendTranscript_Unsupported(t *testing.T) {
	h, e := newTestHandler(false)
	c, _ := postJSON(e, `{"results":[{"text":"pain scale","final":true}]}`, "nursing")

	err := h.SendTranscript(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotImplemented {
		t.Errorf("expected 501, got %v", err)
	}
}

func TestHandler_SendTranscript(t *testing.T) {
	h, e := newTestHandler(true)
	body := `{"results":[{"text":"how do I","final":false},{"text":"dress this wound","final":true}],"speak":true}`
	c, rec := postJSON(e, body, "nursing")

	if err := h.SendTranscript(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp transcriptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Transcript != "dress this wound" {
		t.Errorf("Transcript = %q", resp.Transcript)
	}
	if resp.Reply.Category != CategoryProcedure || !resp.Reply.Spoken {
		t.Errorf("unexpected reply: %+v", resp.Reply)
	}
}

func TestHandler_ListKnowledgeBases(t *testing.T) {
	h, e := newTestHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/?name=Jordan", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListKnowledgeBases(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Hello Jordan!") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_GetCapabilities(t *testing.T) {
	h, e := newTestHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetCapabilities(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"speech_recognition":false`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_ListTopics(t *testing.T) {
	h, e := newTestHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kb")
	c.SetParamValues("general")

	if err := h.ListTopics(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var topics []topicView
	if err := json.Unmarshal(rec.Body.Bytes(), &topics); err != nil {
		t.Fatal(err)
	}
	if len(topics) != 3 {
		t.Fatalf("expected 3 categories, got %+v", topics)
	}
	medical := topics[0]
	if medical.Category != CategoryMedical || strings.Join(medical.Triggers, ",") != "blood pressure,hypertension,pain,pain scale,fall risk,safety" {
		t.Errorf("unexpected medical topics: %+v", medical)
	}
	if topics[1].Category != CategoryMedication || topics[2].Category != CategoryProcedure {
		t.Errorf("categories out of rule order: %+v", topics)
	}

	c.SetParamValues("oncology")
	err := h.ListTopics(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
