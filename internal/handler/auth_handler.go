package handler

import (
	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	result, err := h.auth.Login(&req)
	if err != nil {
		// Login failures answer 401, not the generic 403 mapping.
		if apperr.Is(err, apperr.CodeUnauthorized) {
			e := err.(*apperr.Error)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"code":    e.Code,
				"message": e.Message,
			})
		}
		return respondErr(c, err)
	}
	return respondOK(c, "Login berhasil", result)
}

// Me returns the identity resolved by the auth middleware.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := getActor(c)
	return respondOK(c, "Profil", fiber.Map{
		"id":    actor.ID,
		"name":  actor.Name,
		"email": actor.Email,
		"role":  c.Locals("user_role"),
	})
}
