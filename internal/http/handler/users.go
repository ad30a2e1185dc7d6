package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/model"
	"userapi/internal/service"
)

// CreateUser godoc
// @Summary Create a user
// @Description Fails with 409 when the id is already taken.
// @Tags users
// @Accept json
// @Produce json
// @Param user body model.UserCreate true "User to create"
// @Success 201 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /users [post]
func CreateUser(svc service.UserService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.UserCreate
		if err := decodeJSON(c, &in); err != nil {
			return respondError(c, logger, err)
		}
		u, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// ListUsers godoc
// @Summary List users
// @Description Returns at most 100 users in no particular order.
// @Tags users
// @Produce json
// @Success 200 {object} model.UserList
// @Failure 500 {object} errorPayload
// @Router /users [get]
func ListUsers(svc service.UserService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext())
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(res)
	}
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /users/{id} [get]
func GetUser(svc service.UserService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(u)
	}
}

// UpdateUser godoc
// @Summary Partially update a user
// @Description Only supplied fields change. At least one of name, age, avatar is required.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param patch body model.UserPatch true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /users/{id} [put]
func UpdateUser(svc service.UserService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p model.UserPatch
		if err := decodeJSON(c, &p); err != nil {
			return respondError(c, logger, err)
		}
		u, err := svc.Update(c.UserContext(), c.Params("id"), p)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(u)
	}
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /users/{id} [delete]
func DeleteUser(svc service.UserService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, logger, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
