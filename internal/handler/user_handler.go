package handler

import (
	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.GetAll(getActor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Daftar akun", users)
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	user, err := h.users.CreateUser(getActor(c), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Akun berhasil dibuat",
		"data":    user,
	})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	user, err := h.users.UpdateUser(getActor(c), id, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Akun berhasil diupdate", user)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.users.DeleteUser(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Akun berhasil dihapus", nil)
}
