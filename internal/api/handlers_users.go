package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	appmw "github.com/streamwise/streamwise/internal/api/middleware"
	"github.com/streamwise/streamwise/internal/database/sqlc"
)

// createUser provisions an account with the configured AI defaults.
// POST /api/v1/users
func (s *Server) createUser(c echo.Context) error {
	var body struct {
		Email   string `json:"email"`
		Country string `json:"country"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || !strings.Contains(body.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}
	if body.Country == "" {
		body.Country = s.cfg.Metadata.TMDB.DefaultRegion
	}

	if existing, err := s.queries.GetUserByEmail(c.Request().Context(), body.Email); err == nil {
		return c.JSON(http.StatusOK, existing)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user, err := s.queries.CreateUser(c.Request().Context(), sqlc.CreateUserParams{
		Email:    body.Email,
		Country:  strings.ToUpper(body.Country),
		AiPolicy: s.cfg.Recommend.DefaultAIPolicy,
		AiLimit:  int64(s.cfg.Recommend.DefaultAILimit),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, user)
}

// getCurrentUser returns the acting user's profile.
// GET /api/v1/users/me
func (s *Server) getCurrentUser(c echo.Context) error {
	user, err := s.queries.GetUser(c.Request().Context(), appmw.UserID(c))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// updateCountry changes the user's region and drops now-stale cached
// recommendations for the old region.
// PUT /api/v1/users/me/country
func (s *Server) updateCountry(c echo.Context) error {
	var body struct {
		Country string `json:"country"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(body.Country) != 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "country must be a two-letter region code")
	}

	userID := appmw.UserID(c)
	user, err := s.queries.UpdateUserCountry(c.Request().Context(), sqlc.UpdateUserCountryParams{
		Country: strings.ToUpper(body.Country),
		ID:      userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := s.recommendService.Invalidate(c.Request().Context(), userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to invalidate recommendations after region change")
	}
	s.recommendService.RefreshInBackground(userID)

	return c.JSON(http.StatusOK, user)
}

// getPreferences returns the user's preference blob.
// GET /api/v1/users/me/preferences
func (s *Server) getPreferences(c echo.Context) error {
	prefs, err := s.preferenceStore.Get(c.Request().Context(), appmw.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, prefs)
}

// updatePreferences replaces the user-editable preference fields while
// preserving internal bookkeeping like skip counters.
// PUT /api/v1/users/me/preferences
func (s *Server) updatePreferences(c echo.Context) error {
	var body struct {
		FreeText     string   `json:"free_text"`
		DealBreakers []string `json:"deal_breakers"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := appmw.UserID(c)
	prefs, err := s.preferenceStore.Get(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	prefs.FreeText = strings.TrimSpace(body.FreeText)
	prefs.DealBreakers = body.DealBreakers

	if err := s.preferenceStore.Put(c.Request().Context(), userID, prefs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, prefs)
}

// updateAIAccess changes the acting user's AI policy and limit.
// PUT /api/v1/users/me/ai-access
func (s *Server) updateAIAccess(c echo.Context) error {
	var body struct {
		Enabled bool   `json:"enabled"`
		Policy  string `json:"policy"`
		Limit   int64  `json:"limit"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	switch body.Policy {
	case "unlimited", "daily", "weekly":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "policy must be unlimited, daily, or weekly")
	}
	if body.Limit < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must not be negative")
	}

	enabled := int64(0)
	if body.Enabled {
		enabled = 1
	}

	userID := appmw.UserID(c)
	err := s.queries.UpdateUserAIAccess(c.Request().Context(), sqlc.UpdateUserAIAccessParams{
		AiEnabled: enabled,
		AiPolicy:  body.Policy,
		AiLimit:   body.Limit,
		ID:        userID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	status, err := s.quotaService.Status(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, status)
}

// searchCatalog resolves free-text queries against the title catalog.
// GET /api/v1/search?q=
func (s *Server) searchCatalog(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	results, err := s.metadataService.Search(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}
