package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/dto"
	"github.com/SscSPs/chat_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type statsHandler struct {
	userService portssvc.UserStatsSvc
}

// registerStatsRoutes mounts the admin dashboard routes. Callers must have run AuthMiddleware.
func registerStatsRoutes(rg *gin.RouterGroup, userService portssvc.UserStatsSvc) {
	h := &statsHandler{userService: userService}

	admin := rg.Group("/admin", middleware.RequireAdmin())
	admin.GET("/stats/users", h.getUserStats)
}

// getUserStats godoc
// @Summary User statistics
// @Description Aggregate user counts for the admin dashboard
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.UserStatsResponse
// @Failure 401 {object} dto.MessageResponse "Unauthorized"
// @Failure 403 {object} dto.MessageResponse "Admin access required"
// @Failure 500 {object} dto.MessageResponse "Failed to load stats"
// @Security BearerAuth
// @Router /api/v1/admin/stats/users [get]
func (h *statsHandler) getUserStats(c *gin.Context) {
	stats, err := h.userService.GetUserStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load stats")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserStatsResponse(stats))
}
