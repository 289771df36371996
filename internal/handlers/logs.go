package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ohms_lab/internal/models"
	"ohms_lab/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var (
	errLogsFrom  = errors.New("invalid 'from' time; use RFC3339 or YYYY-MM-DD")
	errLogsTo    = errors.New("invalid 'to' time; use RFC3339 or YYYY-MM-DD")
	errLogsRange = errors.New("'from' must be <= 'to'")
	errLogsType  = errors.New("unknown event type")
)

// LogsQuery is the query string of GET /api/v1/logs.
type LogsQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
	Type string `form:"type"`
}

// filter turns the raw query into a service filter scoped to sessionID. A
// date-only 'to' covers that whole day.
func (q LogsQuery) filter(sessionID string) (service.LogFilter, error) {
	f := service.LogFilter{SessionID: sessionID}
	var err error
	if q.From != "" {
		if f.From, err = parseQueryTime(q.From); err != nil {
			return f, errLogsFrom
		}
	}
	if q.To != "" {
		if f.To, err = parseQueryTime(q.To); err != nil {
			return f, errLogsTo
		}
		if !strings.ContainsAny(q.To, "T ") {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, errLogsRange
	}
	if t := strings.ToUpper(strings.TrimSpace(q.Type)); t != "" {
		if !models.IsEventType(t) {
			return f, fmt.Errorf("%w %q", errLogsType, q.Type)
		}
		f.Type = t
	}
	return f, nil
}

// @Summary      List the session's activity log
// @Description  Only events of the calling session are returned, oldest first. A date-only 'to' is inclusive to the end of that day (UTC).
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to    query   string  false  "End of range, same formats"  example(2025-08-31)
// @Param        type  query   string  false  "Event type (case-insensitive)"  Enums(SESSION_START,SECTION_CHANGE,CIRCUIT_CHANGE,SHORT_TRIGGERED,FUSE_BLOWN,FUSE_RESET,QUIZ_TOGGLE,NARRATION,SESSION_END)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	var q LogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sid := sessionID(c)
	f, err := q.filter(sid)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err,
			"session_id", sid, "from", f.From, "to", f.To, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sid,
		"count":      len(events),
		"events":     events,
	})
}

// parseQueryTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" and returns UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
