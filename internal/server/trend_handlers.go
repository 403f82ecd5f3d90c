package server

import (
	"time"

	"vibetweet/internal/models"

	"github.com/gofiber/fiber/v2"
)

const trendsTimeout = 15 * time.Second

// GetTrends handles GET /api/trends
// @Summary Current trends
// @Description Merged and deduplicated topics from the configured feeds
// @Tags trends
// @Produce json
// @Success 200 {object} models.TrendsResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /trends [get]
func (s *Server) GetTrends(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, trendsTimeout)
	defer cancel()

	list, err := s.trends.Current(ctx)
	if err != nil {
		return mapServiceError(c, models.NewUpstreamError("trend sources unavailable", err))
	}
	return c.JSON(models.TrendsResponse{Trends: list})
}
