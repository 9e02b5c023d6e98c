package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"colognehub/internal/session"
)

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *handlers) session(c *gin.Context) {
	snap, err := h.deps.Session.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(snap))
}

func sessionResponse(snap session.Snapshot) gin.H {
	return gin.H{
		"authenticated":   snap.Authenticated(),
		"isAdmin":         snap.IsAdmin(),
		"role":            snap.Role,
		"username":        snap.Username,
		"email":           snap.Email,
		"isEmailVerified": snap.IsEmailVerified,
	}
}

func (h *handlers) listNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.deps.Notifications.List()})
}

func (h *handlers) dismissNotification(c *gin.Context) {
	if !h.deps.Notifications.Remove(c.Param("id")) {
		c.JSON(http.StatusNotFound, messageResponse{Message: "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// gated answers a request whose action was deferred behind the login prompt.
func gated(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{
		"message":      "Please log in to continue.",
		"authRequired": true,
		"pending":      true,
	})
}

func productIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("productId"))
	if id == "" {
		badRequest(c, "product id is required")
		return "", false
	}
	return id, true
}
