package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetDashboard renders the role dashboard summary. Routing to the right role is done by DashboardGuard.
// @Summary Role dashboard
// @Tags dashboard
// @Produce json
// @Param role path string true "Role"
// @Success 200 {object} services.DashboardResponse
// @Success 302
// @Router /dashboard/{role} [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Rendering dashboard", "role", user.Role)

	dashboard, err := h.service.GetDashboard(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
