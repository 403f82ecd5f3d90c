package server

import (
	"vibetweet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /api/users
// @Summary Create user
// @Description Register a user; default preferences are created with it
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.UserCreate true "User"
// @Success 201 {object} models.UserWithPreferences
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	var req models.UserCreate
	if err := parseBody(c, &req, false); err != nil {
		return nil
	}

	user, err := s.userService.CreateUser(ctx, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.ToResponseWithPreferences())
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.UserResponse
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	page := parsePagination(c, 50)
	users, err := s.userService.ListUsers(ctx, page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}

	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return c.JSON(out)
}

// GetUser handles GET /api/users/:id
// @Summary Get user with preferences
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserWithPreferences
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	user, err := s.userService.GetUser(ctx, id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user.ToResponseWithPreferences())
}

// UpdateUser handles PATCH /api/users/:id
// @Summary Update user
// @Description Partial update; an empty email clears it
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.UserUpdate true "Fields to change"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id} [patch]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	var req models.UserUpdate
	if err := parseBody(c, &req, false); err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	user, err := s.userService.UpdateUser(ctx, id, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user.ToResponse())
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete user and everything they own
// @Tags users
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	if err := s.userService.DeleteUser(ctx, id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
