package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-chat-api/internal/store"
)

type CreateRoomRequest struct {
	Name         string   `json:"name" binding:"required"`
	Participants []string `json:"participants"`
}

type UpdateRoomRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

type ParticipantRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type CallRequest struct {
	IsActive bool `json:"isActive"`
}

// CreateRoom opens a room with the caller as the first participant.
func (h *Handler) CreateRoom(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	room, err := h.Rooms.Create(c.Request.Context(), id, req.Name, req.Participants)
	if err != nil {
		respondError(c, err, "Failed to create room")
		return
	}
	c.JSON(http.StatusCreated, room)
}

// ListRooms returns all rooms to admins and the caller's rooms to everyone else.
func (h *Handler) ListRooms(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	rooms, err := h.Rooms.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to list rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	room, err := h.Rooms.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load room")
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	room, err := h.Rooms.Update(c.Request.Context(), id, c.Param("id"), store.RoomUpdate{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondError(c, err, "Failed to update room")
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Rooms.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete room")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddParticipant(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	room, err := h.Rooms.AddParticipant(c.Request.Context(), id, c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err, "Failed to add participant")
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handler) RemoveParticipant(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	room, err := h.Rooms.RemoveParticipant(c.Request.Context(), id, c.Param("id"), c.Param("userId"))
	if err != nil {
		respondError(c, err, "Failed to remove participant")
		return
	}
	c.JSON(http.StatusOK, room)
}

// ToggleCall starts or ends the room's call.
func (h *Handler) ToggleCall(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	room, err := h.Rooms.SetActive(c.Request.Context(), id, c.Param("id"), req.IsActive)
	if err != nil {
		respondError(c, err, "Failed to update call status")
		return
	}
	c.JSON(http.StatusOK, room)
}
