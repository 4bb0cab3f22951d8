package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
	"github.com/DragX-cyber/Legal-Mate/internal/sessions"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/server/middleware"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/server/respond"
)

type Handler struct {
	Assembler *Assembler
}

func NewHandler(assembler *Assembler) *Handler {
	return &Handler{Assembler: assembler}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions/:id/chat", h.chat)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "body must be JSON with a message field", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	turn, err := h.Assembler.Respond(c.Request.Context(), userID, c.Param("id"), req.Message)
	if err != nil {
		respondChatError(c, err)
		return
	}

	respond.OK(c, gin.H{
		"sessionId": c.Param("id"),
		"reply":     turn,
	})
}

func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		respond.Error(c, http.StatusBadRequest, "empty_message", "message must not be empty", nil)
	case errors.Is(err, sessions.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "session_not_found", "session not found", nil)
	case errors.Is(err, sessions.ErrDeleted):
		respond.Error(c, http.StatusGone, "session_deleted", "session has been deleted", nil)
	case errors.Is(err, analysis.ErrModelUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "model_unavailable", "the model is temporarily unavailable, try again shortly", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process message", nil)
	}
}
