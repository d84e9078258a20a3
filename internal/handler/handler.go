// Package handler contains the thin HTTP layer: parse the request, call one
// service operation with the acting user, translate the result.
package handler

import (
	"errors"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// getActor rebuilds the caller identity from the locals the auth middleware
// populated.
func getActor(c *fiber.Ctx) service.Actor {
	id, _ := c.Locals("user_id").(string)
	name, _ := c.Locals("user_name").(string)
	email, _ := c.Locals("user_email").(string)
	role, _ := c.Locals("user_role").(string)
	return service.Actor{
		ID:      id,
		Name:    name,
		Email:   email,
		IsAdmin: role == "admin",
	}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.Field("id", "ID tidak valid")
	}
	return id, nil
}

// respondErr maps the error taxonomy onto HTTP statuses. Conflict-class
// refusals (duplicate, no-change, linked record, unit conflict, trashed
// parent, insufficient stock) share 409 so clients branch on the code.
func respondErr(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.New(apperr.CodeTxFailure, "Terjadi kesalahan sistem")
	}

	status := fiber.StatusInternalServerError
	switch e.Code {
	case apperr.CodeValidation:
		status = fiber.StatusUnprocessableEntity
	case apperr.CodeDuplicateName, apperr.CodeNoChange, apperr.CodeLinkedRecord,
		apperr.CodeUnitConflict, apperr.CodeTrashedParent, apperr.CodeInsufficientStock:
		status = fiber.StatusConflict
	case apperr.CodeNotFound:
		status = fiber.StatusNotFound
	case apperr.CodeUnauthorized:
		status = fiber.StatusForbidden
	}

	body := fiber.Map{
		"success": false,
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Fields) > 0 {
		body["error"] = e.Fields
	}
	if e.ExistingUnit != "" {
		body["existing_unit"] = e.ExistingUnit
	}
	return c.Status(status).JSON(body)
}

func respondOK(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(body)
}
