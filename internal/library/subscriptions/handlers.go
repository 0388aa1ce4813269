package subscriptions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/streamwise/streamwise/internal/api/middleware"
	"github.com/streamwise/streamwise/internal/database/sqlc"
)

// Handlers provides HTTP handlers for subscription operations.
type Handlers struct {
	service *Service
	queries *sqlc.Queries
}

// NewHandlers creates a new subscriptions handlers instance.
func NewHandlers(service *Service, queries *sqlc.Queries) *Handlers {
	return &Handlers{service: service, queries: queries}
}

// RegisterRoutes registers subscription routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/spend", h.Spend)
}

// List returns the user's active subscriptions.
// GET /api/v1/subscriptions
func (h *Handlers) List(c echo.Context) error {
	subs, err := h.service.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, subs)
}

// Create adds a subscription.
// POST /api/v1/subscriptions
func (h *Handlers) Create(c echo.Context) error {
	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if input.ServiceName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "service_name is required")
	}

	user, err := h.queries.GetUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	sub, err := h.service.Create(c.Request().Context(), user, input)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

// Update replaces a subscription's mutable fields.
// PUT /api/v1/subscriptions/:id
func (h *Handlers) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid subscription ID")
	}

	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sub, err := h.service.Update(c.Request().Context(), middleware.UserID(c), id, input)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sub)
}

// Delete removes a subscription.
// DELETE /api/v1/subscriptions/:id
func (h *Handlers) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid subscription ID")
	}

	if err := h.service.Delete(c.Request().Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Spend returns the total monthly-equivalent spend.
// GET /api/v1/subscriptions/spend
func (h *Handlers) Spend(c echo.Context) error {
	total, err := h.service.MonthlySpend(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]float64{"monthly_spend": total})
}
