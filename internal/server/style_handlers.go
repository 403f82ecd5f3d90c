package server

import (
	"vibetweet/internal/models"
	"vibetweet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetStyleProfile handles GET /api/users/:id/style-profile
// @Summary Get style profile
// @Tags style
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.StyleProfileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/style-profile [get]
func (s *Server) GetStyleProfile(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	profile, err := s.styleService.GetProfile(ctx, id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile.ToResponse())
}

// GetStyleSummary handles GET /api/users/:id/style-profile/summary
// @Summary Get style summary
// @Description Users never analyzed get an empty summary with has_profile=false
// @Tags style
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.StyleProfileSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/style-profile/summary [get]
func (s *Server) GetStyleSummary(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	summary, err := s.styleService.GetSummary(ctx, id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(summary)
}

// RefreshStyleProfile handles POST /api/users/:id/style-profile/refresh
// @Summary Recompute style profile
// @Description Analyzes the whole tweet history synchronously. Without tweets the profile is removed and 422 is returned.
// @Tags style
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.StyleProfileResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /users/{id}/style-profile/refresh [post]
func (s *Server) RefreshStyleProfile(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, analysisBudget)
	defer cancel()

	profile, err := s.styleService.Recompute(ctx, id, service.TriggerManual)
	if err != nil {
		return mapServiceError(c, err)
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("no tweets to analyze"))
	}
	return c.JSON(profile.ToResponse())
}
