package sessions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DragX-cyber/Legal-Mate/internal/shared/server/middleware"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sessions", h.list)
	rg.GET("/sessions/:id", h.get)
	rg.GET("/sessions/:id/messages", h.messages)
	rg.DELETE("/sessions/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sessions, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	respond.OK(c, gin.H{"sessions": sessions})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	session, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	respond.OK(c, session)
}

func (h *Handler) messages(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	session, turns, err := h.Svc.History(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"sessionId": session.ID,
		"title":     session.Title,
		"messages":  turns,
	})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondSessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondSessionError maps the session error taxonomy to HTTP statuses.
func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "session_not_found", "session not found", nil)
	case errors.Is(err, ErrDeleted):
		respond.Error(c, http.StatusGone, "session_deleted", "session has been deleted", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to access session", nil)
	}
}
