package server

import (
	"time"

	"vibetweet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Bulk imports and remote fetches get more room than plain CRUD.
const (
	importTimeout  = 30 * time.Second
	xImportTimeout = 60 * time.Second
)

// TweetListResponse is one page of a user's tweet history.
type TweetListResponse struct {
	Tweets []models.TweetResponse `json:"tweets"`
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// ImportTweets handles POST /api/users/:id/tweets/import
// @Summary Bulk import tweet history
// @Description Tweets whose tweet_id was already imported are skipped; imported + skipped == total
// @Tags tweets
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.TweetBulkImport true "Tweets"
// @Success 200 {object} models.TweetImportResult
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /users/{id}/tweets/import [post]
func (s *Server) ImportTweets(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	var req models.TweetBulkImport
	if err := parseBody(c, &req, false); err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, importTimeout)
	defer cancel()

	result, err := s.tweetService.ImportTweets(ctx, id, req.Tweets)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// ImportFromX handles POST /api/users/:id/tweets/import/x
// @Summary Import recent public tweets of an X handle
// @Tags tweets
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.XImportRequest true "Handle and limit"
// @Success 200 {object} models.TweetImportResult
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /users/{id}/tweets/import/x [post]
func (s *Server) ImportFromX(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	var req models.XImportRequest
	if err := parseBody(c, &req, false); err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, xImportTimeout)
	defer cancel()

	result, err := s.tweetService.ImportFromX(ctx, id, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// CreateTweet handles POST /api/users/:id/tweets
// @Summary Import one tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.TweetCreate true "Tweet"
// @Success 201 {object} models.TweetResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /users/{id}/tweets [post]
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	var req models.TweetCreate
	if err := parseBody(c, &req, false); err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	tweet, err := s.tweetService.CreateTweet(ctx, id, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tweet.ToResponse())
}

// ListTweets handles GET /api/users/:id/tweets
// @Summary List tweet history
// @Description Newest first
// @Tags tweets
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} TweetListResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/tweets [get]
func (s *Server) ListTweets(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	page := parsePagination(c, 50)
	tweets, total, err := s.tweetService.ListTweets(ctx, id, page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}

	out := make([]models.TweetResponse, len(tweets))
	for i := range tweets {
		out[i] = tweets[i].ToResponse()
	}
	return c.JSON(TweetListResponse{
		Tweets: out,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}
