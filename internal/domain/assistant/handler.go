package assistant

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/shifthandoff/internal/platform/speech"
)

type Handler struct {
	responder *Responder
	speech    *speech.Provider
}

func NewHandler(responder *Responder, sp *speech.Provider) *Handler {
	return &Handler{responder: responder, speech: sp}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/capabilities", h.GetCapabilities)
	api.GET("/assistant/knowledge-bases", h.ListKnowledgeBases)
	api.GET("/assistant/:kb/topics", h.ListTopics)
	api.POST("/assistant/:kb/messages", h.SendMessage)
	api.POST("/assistant/:kb/transcripts", h.SendTranscript)
}

type knowledgeBaseView struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Greeting string `json:"greeting"`
	Triggers int    `json:"triggers"`
}

type topicView struct {
	Category Category `json:"category"`
	Triggers []string `json:"triggers"`
}

type messageRequest struct {
	Message string `json:"message"`
	Speak   bool   `json:"speak"`
}

type transcriptRequest struct {
	Results []speech.Result `json:"results"`
	Speak   bool            `json:"speak"`
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
	Reply      Reply  `json:"reply"`
}

func (h *Handler) GetCapabilities(c echo.Context) error {
	return c.JSON(http.StatusOK, h.speech.Capabilities())
}

// ListKnowledgeBases greets ?name= when given.
func (h *Handler) ListKnowledgeBases(c echo.Context) error {
	name := c.QueryParam("name")
	out := []knowledgeBaseView{}
	for _, kb := range h.responder.KnowledgeBases() {
		out = append(out, knowledgeBaseView{
			Name:     kb.Name,
			Title:    kb.Title,
			Greeting: kb.Greeting(name),
			Triggers: len(kb.Rules()),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ListTopics groups a knowledge base's trigger phrases by category, in the
// order the categories first appear in the rule table.
func (h *Handler) ListTopics(c echo.Context) error {
	kb, err := h.responder.KnowledgeBase(c.Param("kb"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	var out []topicView
	index := map[Category]int{}
	for _, r := range kb.Rules() {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, topicView{Category: r.Category})
		}
		out[i].Triggers = append(out[i].Triggers, r.Trigger)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) reply(c echo.Context, message string, speak bool) (Reply, error) {
	reply, err := h.responder.Respond(c.Param("kb"), message)
	if err != nil {
		if errors.Is(err, ErrUnknownKnowledgeBase) {
			return Reply{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return Reply{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if speak && h.speech.Capabilities().Synthesis {
		h.speech.Synthesizer().Speak(c.Request().Context(), reply.Text)
		reply.Spoken = true
	}
	return reply, nil
}

func (h *Handler) SendMessage(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reply, err := h.reply(c, req.Message, req.Speak)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply)
}

// SendTranscript answers a dictated question. Deployments without speech
// recognition respond 501.
func (h *Handler) SendTranscript(c echo.Context) error {
	if !h.speech.Capabilities().Recognition {
		return echo.NewHTTPError(http.StatusNotImplemented, speech.ErrUnsupported.Error())
	}
	var req transcriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	text, err := h.speech.Transcribe(c.Request().Context(), req.Results)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	}
	reply, err := h.reply(c, text, req.Speak)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transcriptResponse{Transcript: text, Reply: reply})
}
