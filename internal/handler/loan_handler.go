package handler

import (
	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/service"

	"github.com/gofiber/fiber/v2"
)

type LoanHandler struct {
	loans service.LoanService
}

func NewLoanHandler(loans service.LoanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

func (h *LoanHandler) List(c *fiber.Ctx) error {
	loans, err := h.loans.ActiveLoans()
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Daftar peminjaman", loans)
}

func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var req service.CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	loan, err := h.loans.CreateLoan(getActor(c), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Peminjaman berhasil disimpan",
		"data":    loan,
	})
}

func (h *LoanHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req service.UpdateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.loans.UpdateLoan(getActor(c), id, &req); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data peminjaman berhasil diupdate", nil)
}

func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.loans.ReturnLoan(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Barang berhasil dikembalikan", nil)
}

func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.loans.DeleteLoan(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Data dipindahkan ke tong sampah", nil)
}
