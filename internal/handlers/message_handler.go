package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SendMessageRequest struct {
	RoomID  string `json:"roomId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// SendMessage persists a message and then pushes it to connections joined to the room.
func (h *Handler) SendMessage(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := h.Messages.Send(c.Request.Context(), id, req.RoomID, req.Content)
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	if h.Realtime != nil {
		h.Realtime.Publish(msg)
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages returns a room's history oldest first with sender names.
func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	messages, err := h.Messages.List(c.Request.Context(), id, c.Param("roomId"))
	if err != nil {
		respondError(c, err, "Failed to list messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}
