package insights

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/streamwise/streamwise/internal/api/middleware"
)

// Handlers provides HTTP handlers for AI insight operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new insights handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers insight routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Get)
	g.GET("/quota", h.Quota)
}

// Get returns AI picks, regenerating when refresh=true.
// GET /api/v1/insights
func (h *Handlers) Get(c echo.Context) error {
	force := c.QueryParam("refresh") == "true"

	result, err := h.service.GetInsights(c.Request().Context(), middleware.UserID(c), force)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// Quota returns the user's AI usage state.
// GET /api/v1/insights/quota
func (h *Handlers) Quota(c echo.Context) error {
	status, err := h.service.QuotaStatus(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, status)
}
