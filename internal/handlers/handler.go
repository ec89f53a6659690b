package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-chat-api/internal/common"
	"github.com/harentsoaR/clinic-chat-api/internal/middleware"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
	"github.com/harentsoaR/clinic-chat-api/internal/realtime"
	"github.com/harentsoaR/clinic-chat-api/internal/services"
)

// Handler carries the services every HTTP handler needs.
type Handler struct {
	Users    *services.UserService
	Rooms    *services.RoomService
	Messages *services.MessageService
	Realtime *realtime.Channel
}

func NewHandler(users *services.UserService, rooms *services.RoomService, messages *services.MessageService, live *realtime.Channel) *Handler {
	return &Handler{
		Users:    users,
		Rooms:    rooms,
		Messages: messages,
		Realtime: live,
	}
}

// identity reads the caller set by the auth middleware. It writes the 401
// itself when there is none.
func identity(c *gin.Context) (models.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return id, ok
}

// respondError maps a service error to its status. Server-side failures are
// logged and reported with the generic message only.
func respondError(c *gin.Context, err error, internalMsg string) {
	status := common.HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %s: %v", c.Request.Method, c.FullPath(), internalMsg, err)
		c.JSON(status, gin.H{"error": internalMsg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
