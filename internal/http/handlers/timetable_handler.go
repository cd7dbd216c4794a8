package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lms-timetable/internal/http/middleware"
	"lms-timetable/internal/service"
	"lms-timetable/internal/timetable"
)

type TimetableHandler struct {
	service *service.TimetableService
}

func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

func (h *TimetableHandler) Register(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/time-slots", h.handleTimeSlots)

	me := g.Group("/students/me", auth)
	me.GET("/timetable", h.handleWeek)
	me.GET("/occurrences/:id", h.handleOccurrence)
}

type weekQuery struct {
	Week string `query:"week" validate:"omitempty,datetime=2006-01-02"`
}

type occurrenceQuery struct {
	ID   string `param:"id" validate:"required"`
	Week string `query:"week" validate:"omitempty,datetime=2006-01-02"`
}

func (h *TimetableHandler) handleTimeSlots(c echo.Context) error {
	slots, err := h.service.TimeSlots(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *TimetableHandler) handleWeek(c echo.Context) error {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req weekQuery
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "week must be YYYY-MM-DD")
	}

	anchor, err := timetable.ParseWeekAnchor(req.Week, h.service.Now(), h.service.Location())
	if err != nil {
		return writeError(c, http.StatusBadRequest, "week must be YYYY-MM-DD")
	}

	week, err := h.service.Week(c.Request().Context(), studentID, anchor)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, week)
}

func (h *TimetableHandler) handleOccurrence(c echo.Context) error {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req occurrenceQuery
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid occurrence request")
	}

	anchor, err := timetable.ParseWeekAnchor(req.Week, h.service.Now(), h.service.Location())
	if err != nil {
		return writeError(c, http.StatusBadRequest, "week must be YYYY-MM-DD")
	}

	occurrence, err := h.service.Occurrence(c.Request().Context(), studentID, anchor, req.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, occurrence)
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return writeError(c, http.StatusBadRequest, "invalid input")
	case errors.Is(err, service.ErrUnauthorized):
		return writeError(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrUpstream):
		return writeError(c, http.StatusBadGateway, "timetable source unavailable")
	default:
		return writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
