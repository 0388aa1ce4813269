package recommend

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/streamwise/streamwise/internal/api/middleware"
)

// Handlers provides HTTP handlers for recommendation operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new recommendation handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers recommendation routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/dashboard", h.Dashboard)
	g.GET("/similar", h.Similar)
	g.POST("/refresh", h.Refresh)
}

// Dashboard returns watch-now, cancel-unused, and trending items.
// GET /api/v1/recommendations/dashboard
func (h *Handlers) Dashboard(c echo.Context) error {
	force := c.QueryParam("refresh") == "true"

	result, err := h.service.GetDashboard(c.Request().Context(), middleware.UserID(c), force)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// Similar returns discovery recommendations.
// GET /api/v1/recommendations/similar
func (h *Handlers) Similar(c echo.Context) error {
	force := c.QueryParam("refresh") == "true"

	result, err := h.service.GetSimilar(c.Request().Context(), middleware.UserID(c), force)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// Refresh recomputes recommendation categories synchronously. An
// optional category query parameter narrows the refresh; the default
// recomputes both.
// POST /api/v1/recommendations/refresh
func (h *Handlers) Refresh(c echo.Context) error {
	var categories []string
	switch category := c.QueryParam("category"); category {
	case "":
	case CategoryDashboard, CategorySimilar:
		categories = append(categories, category)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category: "+category)
	}

	if err := h.service.Refresh(c.Request().Context(), middleware.UserID(c), categories...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
