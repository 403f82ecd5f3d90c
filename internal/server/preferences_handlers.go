package server

import (
	"vibetweet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPreferences handles GET /api/users/:id/preferences
// @Summary Get preferences
// @Tags preferences
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.PreferencesResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/preferences [get]
func (s *Server) GetPreferences(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	prefs, err := s.preferencesService.GetPreferences(ctx, id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(prefs.ToResponse())
}

// UpdatePreferences handles PATCH /api/users/:id/preferences
// @Summary Update preferences
// @Description Partial update of interests, tone and llm_provider
// @Tags preferences
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.PreferencesUpdate true "Fields to change"
// @Success 200 {object} models.PreferencesResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /users/{id}/preferences [patch]
func (s *Server) UpdatePreferences(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	var req models.PreferencesUpdate
	if err := parseBody(c, &req, false); err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	prefs, err := s.preferencesService.UpdatePreferences(ctx, id, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(prefs.ToResponse())
}
