package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Start a lab session
// @Description  Returns a bearer token for /api/v1 and /ws together with the initial state
// @Tags         session
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "token, state"
// @Failure      500  {object}  map[string]string
// @Router       /sessions [post]
func (h *Handler) createSession(c *gin.Context) {
	token, snap, err := h.services.Create(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to create session", "session_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "state": snap})
}

// @Summary      End the lab session
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session [delete]
// @Security     BearerAuth
func (h *Handler) endSession(c *gin.Context) {
	if err := h.services.End(c.Request.Context(), sessionID(c)); err != nil {
		h.respondLabError(c, "session_end_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusEnded})
}
