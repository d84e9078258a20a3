package handler

import (
	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BackupHandler struct {
	backup      service.BackupService
	periodClose service.PeriodCloseService
	audit       service.AuditService
}

func NewBackupHandler(backup service.BackupService, periodClose service.PeriodCloseService, audit service.AuditService) *BackupHandler {
	return &BackupHandler{backup: backup, periodClose: periodClose, audit: audit}
}

func (h *BackupHandler) Settings(c *fiber.Ctx) error {
	settings, err := h.backup.Settings()
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Pengaturan backup", settings)
}

func (h *BackupHandler) SetEmailActive(c *fiber.Ctx) error {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.backup.SetEmailActive(getActor(c), req.Active); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Pengaturan disimpan", nil)
}

func (h *BackupHandler) RequestOTP(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.backup.RequestOTP(getActor(c), req.Email); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Kode OTP telah dikirim", nil)
}

func (h *BackupHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Field("body", "Request tidak valid"))
	}
	if err := h.backup.VerifyOTP(getActor(c), req.Email, req.Code); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Email berhasil diverifikasi", nil)
}

func (h *BackupHandler) DeleteEmail(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.backup.DeleteEmail(getActor(c), id); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Email dihapus dari daftar", nil)
}

// PeriodClose runs the full close and streams the archive back as the
// response attachment.
func (h *BackupHandler) PeriodClose(c *fiber.Ctx) error {
	artifact, err := h.periodClose.Close(getActor(c))
	if err != nil {
		return respondErr(c, err)
	}
	c.Set(fiber.HeaderContentType, artifact.MIME)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+artifact.Filename+`"`)
	return c.Send(artifact.Content)
}

func (h *BackupHandler) AuditLog(c *fiber.Ctx) error {
	entries, err := h.audit.Recent()
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, "Log aktivitas", entries)
}
