package handoff

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/shifts", h.StartShift)
	api.GET("/patients/:id/handoff", h.GetHandoff)
	api.GET("/patients/:id/handoff/prompts", h.ListPrompts)
	api.POST("/patients/:id/handoff/entries", h.RecordEntry)
	api.POST("/patients/:id/handoff/review", h.SubmitForReview)
	api.POST("/patients/:id/handoff/complete", h.CompleteShift)
}

func httpError(err error) error {
	switch {
	case IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrShiftCompleted), errors.Is(err, ErrShiftInReview):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func (h *Handler) StartShift(c echo.Context) error {
	sum, err := h.svc.StartShift(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sum)
}

func (h *Handler) GetHandoff(c echo.Context) error {
	skip, _ := strconv.ParseBool(c.QueryParam("skip_optional"))
	r, err := h.svc.Report(c.Request().Context(), c.Param("id"), skip)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

// ListPrompts returns the guided questions addressed to this patient.
func (h *Handler) ListPrompts(c echo.Context) error {
	p, err := h.svc.patients.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	out := make([]PromptView, 0, len(guidedPrompts))
	for _, pr := range guidedPrompts {
		out = append(out, pr.View(p.Name))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RecordEntry(c echo.Context) error {
	var in EntryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.RecordEntry(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) CompleteShift(c echo.Context) error {
	sh, err := h.svc.CompleteShift(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *Handler) SubmitForReview(c echo.Context) error {
	sh, err := h.svc.SubmitForReview(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sh)
}
