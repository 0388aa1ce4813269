package watchlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/streamwise/streamwise/internal/api/middleware"
)

var validStatuses = map[string]bool{
	"plan_to_watch": true,
	"watching":      true,
	"watched":       true,
	"dropped":       true,
}

// Handlers provides HTTP handlers for watchlist operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new watchlist handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers watchlist routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Add)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/status", h.SetStatus)
	g.PATCH("/:id/rating", h.SetRating)
	g.PATCH("/:id/progress", h.SetProgress)
}

// List returns the user's watchlist.
// GET /api/v1/watchlist
func (h *Handlers) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Add creates a watchlist entry.
// POST /api/v1/watchlist
func (h *Handlers) Add(c echo.Context) error {
	var input AddInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if input.TmdbID <= 0 || input.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tmdb_id and title are required")
	}
	if input.MediaType != "movie" && input.MediaType != "tv" {
		return echo.NewHTTPError(http.StatusBadRequest, "media_type must be movie or tv")
	}

	item, err := h.service.Add(c.Request().Context(), middleware.UserID(c), input)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

// Delete removes a watchlist entry.
// DELETE /api/v1/watchlist/:id
func (h *Handlers) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "watchlist item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// SetStatus updates an entry's lifecycle status.
// PATCH /api/v1/watchlist/:id/status
func (h *Handlers) SetStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !validStatuses[body.Status] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	item, err := h.service.SetStatus(c.Request().Context(), middleware.UserID(c), id, body.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "watchlist item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

// SetRating records a 1-10 rating.
// PATCH /api/v1/watchlist/:id/rating
func (h *Handlers) SetRating(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body struct {
		Rating int64 `json:"rating"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.Rating < 1 || body.Rating > 10 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 10")
	}

	item, err := h.service.SetRating(c.Request().Context(), middleware.UserID(c), id, body.Rating)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "watchlist item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

// SetProgress updates season and episode progress.
// PATCH /api/v1/watchlist/:id/progress
func (h *Handlers) SetProgress(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body struct {
		Season  int64 `json:"season"`
		Episode int64 `json:"episode"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	item, err := h.service.SetProgress(c.Request().Context(), middleware.UserID(c), id, body.Season, body.Episode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "watchlist item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid watchlist item ID")
	}
	return id, nil
}
