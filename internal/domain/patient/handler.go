package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/shifthandoff/internal/domain/status"
	"github.com/ehr/shifthandoff/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/stats", h.GetStats)
	api.GET("/patients/:id", h.GetPatient)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id/status", h.GetStatus)
	api.PUT("/patients/:id/status", h.UpdateStatus)
	api.PATCH("/patients/:id", h.UpdatePatient)
	api.GET("/patients/:id/vitals", h.ListVitals)
	api.POST("/patients/:id/vitals", h.RecordVitals)
	api.GET("/patients/:id/activity", h.ListActivity)
	api.POST("/patients/:id/notes", h.AddNote)
	api.POST("/patients/:id/tasks", h.AddTask)
	api.POST("/patients/:id/tasks/:taskId/complete", h.CompleteTask)
}

// notFoundOr maps repository misses to 404 and everything else to code.
func notFoundOr(err error, code int) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	case errors.Is(err, ErrTaskCompleted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(code, err.Error())
}

func (h *Handler) ListPatients(c echo.Context) error {
	sortMode, err := ParseSortMode(c.QueryParam("sort"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	filter, err := ParseFilterKind(c.QueryParam("filter"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.List(c.Request().Context(), ListParams{
		Sort:   sortMode,
		Filter: filter,
		Query:  c.QueryParam("q"),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(h.svc.Views(pagination.Page(items, pg)), len(items), pg))
}

func (h *Handler) GetStats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) GetPatient(c echo.Context) error {
	d, err := h.svc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFoundOr(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetStatus(c echo.Context) error {
	st, err := h.svc.GetStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFoundOr(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var st Status
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), &st); err != nil {
		return notFoundOr(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) RecordVitals(c echo.Context) error {
	var snap status.Snapshot
	if err := c.Bind(&snap); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.RecordVitals(c.Request().Context(), c.Param("id"), snap)
	if err != nil {
		return notFoundOr(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var u CensusUpdate
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateCensus(c.Request().Context(), c.Param("id"), u)
	if err != nil {
		return notFoundOr(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListVitals(c echo.Context) error {
	hist, err := h.svc.VitalsHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFoundOr(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, pagination.Paginate(c, hist))
}

func (h *Handler) ListActivity(c echo.Context) error {
	log, err := h.svc.Activity(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFoundOr(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, pagination.Paginate(c, log))
}

func (h *Handler) AddNote(c echo.Context) error {
	var in NoteInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.AddNote(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return notFoundOr(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) AddTask(c echo.Context) error {
	var in TaskInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.AddTask(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return notFoundOr(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) CompleteTask(c echo.Context) error {
	t, err := h.svc.CompleteTask(c.Request().Context(), c.Param("id"), c.Param("taskId"))
	if err != nil {
		return notFoundOr(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, t)
}
