package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"ohms_lab/internal/lab"
	"ohms_lab/internal/lab/circuit"
	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/lab/quiz"
	"ohms_lab/internal/lab/shortcircuit"
	"ohms_lab/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK           = "ok"
	statusSectionSet   = "section_set"
	statusCircuitSet   = "circuit_set"
	statusShorted      = "shorted"
	statusFuseReplaced = "fuse_replaced"
	statusToggled      = "toggled"
	statusEnded        = "ended"

	errInvalidInput    = "invalid_input"
	errBusy            = "busy"
	errSessionExpired  = "session expired; create a new one"
	errInternal        = "internal error"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondLabError maps domain errors to status codes. Anything unrecognised is a 500.
func (h *Handler) respondLabError(c *gin.Context, logKey string, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errSessionExpired})
	case errors.Is(err, circuit.ErrInvalidInput),
		errors.Is(err, lab.ErrUnknownSection),
		errors.Is(err, narration.ErrEmptyText):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, quiz.ErrUnknownItem),
		errors.Is(err, service.ErrUnknownScript):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, shortcircuit.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, narration.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": errBusy})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, "session_id", sessionID(c))
	}
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "err", err, "path", c.FullPath())
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

// SectionRequest selects the visible lesson section.
type SectionRequest struct {
	// One of Theory, Lab, Functions, Protection, Summary (case-insensitive)
	Section string `json:"section" binding:"required" example:"Lab"`
}

// CircuitRequest moves both sliders. Voltage 1..24 step 1, resistance 10..1000 step 10.
type CircuitRequest struct {
	Voltage    float64 `json:"voltage" binding:"required" example:"12"`
	Resistance float64 `json:"resistance" binding:"required" example:"100"`
}

// NarrationRequest asks for text or a lesson script to be read aloud.
type NarrationRequest struct {
	// Script key such as "theory" or "character.voltage"; wins over Text
	Script string `json:"script,omitempty" example:"protection"`
	Text   string `json:"text,omitempty" example:"Ohms lag: I = U / R"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Lesson content
// @Description  Sections, character cards, function cards, quiz questions and narration scripts
// @Tags         lesson
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /lesson [get]
func (h *Handler) getLesson(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Lesson())
}

// @Summary      Ohm's law calculator
// @Description  I = U / R for any voltage and a positive resistance
// @Tags         lab
// @Produce      json
// @Param        voltage     query  number  true  "Voltage in V"  example(12)
// @Param        resistance  query  number  true  "Resistance in Ω"  example(100)
// @Success      200  {object}  map[string]interface{}  "voltage, resistance, current, display"
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/ohm [get]
func (h *Handler) calculateCurrent(c *gin.Context) {
	v, errV := strconv.ParseFloat(c.Query("voltage"), 64)
	r, errR := strconv.ParseFloat(c.Query("resistance"), 64)
	if errV != nil || errR != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
		return
	}
	i, err := circuit.Current(v, r)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"voltage":    v,
		"resistance": r,
		"current":    i,
		"display":    circuit.Format(i, 3),
	})
}

// @Summary      Get session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  models.LabSnapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session [get]
// @Security     BearerAuth
func (h *Handler) getSession(c *gin.Context) {
	snap, err := h.services.Snapshot(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondLabError(c, "session_snapshot_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Select lesson section
// @Description  Only changes which section is visible; the lab keeps its state
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      SectionRequest  true  "Section"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/session/section [put]
// @Security     BearerAuth
func (h *Handler) selectSection(c *gin.Context) {
	var req SectionRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	snap, err := h.services.SelectSection(c.Request.Context(), sessionID(c), req.Section)
	if err != nil {
		h.respondLabError(c, "select_section_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSectionSet, "state": snap})
}

// @Summary      Set voltage and resistance
// @Description  Both values must sit on a slider step; invalid input leaves the circuit unchanged
// @Tags         lab
// @Accept       json
// @Produce      json
// @Param        body  body      CircuitRequest  true  "Slider values"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/circuit [put]
// @Security     BearerAuth
func (h *Handler) setCircuit(c *gin.Context) {
	var req CircuitRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	snap, err := h.services.SetCircuit(c.Request.Context(), sessionID(c), req.Voltage, req.Resistance)
	if err != nil {
		h.respondLabError(c, "set_circuit_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCircuitSet, "state": snap})
}

// @Summary      I-U chart
// @Description  SVG line of I = U / R at the session's resistance with the operating point marked
// @Tags         lab
// @Produce      image/svg+xml
// @Success      200
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/circuit/chart.svg [get]
// @Security     BearerAuth
func (h *Handler) circuitChart(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.services.CircuitChart(c.Request.Context(), sessionID(c), &buf); err != nil {
		h.respondLabError(c, "circuit_chart_failed", err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// @Summary      Trigger short circuit
// @Description  Normal -> shorted; the fuse blows 1.5 s later
// @Tags         short-circuit
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/short-circuit/trigger [post]
// @Security     BearerAuth
func (h *Handler) triggerShort(c *gin.Context) {
	snap, err := h.services.TriggerShort(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondLabError(c, "short_trigger_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusShorted, "state": snap})
}

// @Summary      Replace the fuse
// @Description  Blown -> normal; rejected in any other state
// @Tags         short-circuit
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/short-circuit/reset [post]
// @Security     BearerAuth
func (h *Handler) resetShort(c *gin.Context) {
	snap, err := h.services.ResetShort(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondLabError(c, "short_reset_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusFuseReplaced, "state": snap})
}

// @Summary      Show or hide a quiz answer
// @Tags         quiz
// @Produce      json
// @Param        id   path      string  true  "Quiz item id"  example(voltage)
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/quiz/{id}/toggle [post]
// @Security     BearerAuth
func (h *Handler) toggleQuiz(c *gin.Context) {
	snap, err := h.services.ToggleQuiz(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		h.respondLabError(c, "quiz_toggle_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusToggled, "state": snap})
}

// @Summary      Narrate
// @Description  Reads a lesson script or free text aloud. While a narration plays, further requests get 409 busy. Narrator failures return 200 with failed=true.
// @Tags         narration
// @Accept       json
// @Produce      json
// @Param        body  body      NarrationRequest  true  "Script key or text"
// @Success      200   {object}  narration.Result
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/narration [post]
// @Security     BearerAuth
func (h *Handler) narrate(c *gin.Context) {
	var req NarrationRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	res, err := h.services.Narrate(c.Request.Context(), sessionID(c), service.NarrationRequest{
		Text:   req.Text,
		Script: req.Script,
	})
	if err != nil {
		h.respondLabError(c, "narration_failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
