package server

import (
	"time"

	"vibetweet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GenerateTweets handles POST /api/users/:id/tweets/generate
// @Summary Generate tweet suggestions
// @Description Suggestions in the user's voice, ranked by confidence. An explicit trends list replaces fetched trends; an empty list disables them.
// @Tags generation
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.TweetGenerationRequest false "Generation request"
// @Success 200 {object} models.TweetGenerationResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /users/{id}/tweets/generate [post]
func (s *Server) GenerateTweets(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	var req models.TweetGenerationRequest
	if err := parseBody(c, &req, true); err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, s.generationTimeout())
	defer cancel()

	resp, err := s.generationService.Generate(ctx, id, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(resp)
}

// generationTimeout covers one call per registered provider plus the
// follow-up call for missing suggestions.
func (s *Server) generationTimeout() time.Duration {
	perCall := s.config.LLMTimeout()
	if perCall <= 0 {
		perCall = 30 * time.Second
	}
	calls := len(s.registry.Names()) + 1
	return time.Duration(calls)*perCall + requestTimeout
}
