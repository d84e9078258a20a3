package handler

import (
	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ItemHandler struct {
	items service.ItemService
}

func NewItemHandler(items service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

func (h *ItemHandler) List(c *fiber.Ctx) error {
	items, err := h.items.ActiveItems()
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Daftar barang", items)
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var req service.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	item, err := h.items.CreateItem(getActor(c), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Barang berhasil ditambahkan",
		"data":    item,
	})
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req service.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	item, err := h.items.UpdateItem(getActor(c), id, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Barang berhasil diupdate", item)
}

func (h *ItemHandler) AddStock(c *fiber.Ctx) error {
	var req service.AddStockRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.items.AddStock(getActor(c), &req); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Stok berhasil ditambahkan", nil)
}

func (h *ItemHandler) ListInbound(c *fiber.Ctx) error {
	rows, err := h.items.ActiveInbound()
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Riwayat barang masuk", rows)
}

func (h *ItemHandler) UpdateInbound(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req service.UpdateInboundRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.items.UpdateInbound(getActor(c), id, &req); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data barang masuk berhasil diupdate", nil)
}

func (h *ItemHandler) DeleteInbound(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.items.DeleteInbound(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data dipindahkan ke tong sampah", nil)
}

func (h *ItemHandler) ListOutbound(c *fiber.Ctx) error {
	rows, err := h.items.ActiveOutbound()
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Riwayat barang keluar", rows)
}

func (h *ItemHandler) CreateOutbound(c *fiber.Ctx) error {
	var req service.CreateOutboundRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.items.CreateOutbound(getActor(c), &req); err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Data barang keluar berhasil disimpan",
	})
}

func (h *ItemHandler) UpdateOutbound(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req service.UpdateOutboundRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.items.UpdateOutbound(getActor(c), id, &req); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data barang keluar berhasil diupdate", nil)
}

func (h *ItemHandler) DeleteOutbound(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.items.DeleteOutbound(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data dipindahkan ke tong sampah", nil)
}

func (h *ItemHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.items.Units()
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Daftar satuan", units)
}

func (h *ItemHandler) CreateUnit(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.items.SaveUnit(getActor(c), req.Name); err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Satuan berhasil disimpan",
	})
}

func (h *ItemHandler) DeleteUnit(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := h.items.DeleteUnit(getActor(c), name); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Satuan berhasil dihapus", nil)
}
