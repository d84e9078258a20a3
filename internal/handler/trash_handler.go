package handler

import (
	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TrashHandler struct {
	trash service.TrashService
}

func NewTrashHandler(trash service.TrashService) *TrashHandler {
	return &TrashHandler{trash: trash}
}

func (h *TrashHandler) View(c *fiber.Ctx) error {
	view, err := h.trash.TrashView()
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Isi tong sampah", view)
}

func (h *TrashHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.trash.DeleteItem(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Barang dipindahkan ke tong sampah", nil)
}

func (h *TrashHandler) RestoreItem(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req struct {
		ForceMatch bool `json:"force_match"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondErr(c, apperr.Field("body", "Request tidak valid"))
		}
	}
	result, err := h.trash.RestoreItem(getActor(c), id, req.ForceMatch)
	if err != nil {
		return respondErr(c, err)
	}
	message := "Barang berhasil dipulihkan"
	if result.Merged {
		message = "Barang berhasil digabungkan dengan " + result.SurvivorName
	}
	return respondOK(c, message, result)
}

func (h *TrashHandler) RestoreInbound(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.trash.RestoreInbound(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data berhasil dipulihkan", nil)
}

func (h *TrashHandler) RestoreOutbound(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.trash.RestoreOutbound(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data berhasil dipulihkan", nil)
}

func (h *TrashHandler) RestoreLoan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.trash.RestoreLoan(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data peminjaman berhasil dipulihkan", nil)
}

// PermanentDelete handles DELETE /trash/:table/:id (admin only).
func (h *TrashHandler) PermanentDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.trash.PermanentDelete(getActor(c), c.Params("table"), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data dihapus permanen", nil)
}
