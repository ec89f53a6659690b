package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-chat-api/internal/services"
)

type UpdateProfileRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser changes the caller's own name, email or password.
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.Users.UpdateProfile(c.Request.Context(), id, services.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err, "Failed to update user profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteCurrentUser(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// SetUserRole is admin only. The target's existing tokens keep the old role until they expire.
func (h *Handler) SetUserRole(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.Users.SetRole(c.Request.Context(), id, c.Param("id"), req.Role); err != nil {
		respondError(c, err, "Failed to update role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully"})
}
