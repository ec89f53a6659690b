package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-chat-api/internal/middleware"
)

// NewRouter builds the gin engine with every route of the API.
func NewRouter(h *Handler, tokens middleware.TokenVerifier, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", h.Health)
	if h.Realtime != nil {
		r.GET("/ws", func(c *gin.Context) {
			h.Realtime.ServeWS(c.Writer, c.Request)
		})
	}

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(middleware.AuthMiddleware(tokens)) // Protect all /api routes
	{
		apiRoutes.GET("/users/me", h.GetCurrentUser)
		apiRoutes.PUT("/users/me", h.UpdateCurrentUser)
		apiRoutes.DELETE("/users/me", h.DeleteCurrentUser)
		apiRoutes.PUT("/users/:id/role", middleware.AdminOnly(), h.SetUserRole)

		apiRoutes.POST("/rooms", h.CreateRoom)
		apiRoutes.GET("/rooms", h.ListRooms)
		apiRoutes.GET("/rooms/:id", h.GetRoom)
		apiRoutes.PUT("/rooms/:id", h.UpdateRoom)
		apiRoutes.DELETE("/rooms/:id", h.DeleteRoom)
		apiRoutes.POST("/rooms/:id/participants", h.AddParticipant)
		apiRoutes.DELETE("/rooms/:id/participants/:userId", h.RemoveParticipant)
		apiRoutes.PATCH("/rooms/:id/call", h.ToggleCall)

		apiRoutes.POST("/messages", h.SendMessage)
		apiRoutes.GET("/messages/:roomId", h.ListMessages)
	}

	return r
}

func (h *Handler) Health(c *gin.Context) {
	live := 0
	if h.Realtime != nil {
		live = h.Realtime.Hub().SessionCount()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "liveConnections": live})
}
