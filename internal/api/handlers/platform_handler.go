package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/service"
)

type PlatformHandler struct {
	directory service.DirectoryService
	connect   service.ConnectService
}

func NewPlatformHandler(directory service.DirectoryService, connect service.ConnectService) *PlatformHandler {
	return &PlatformHandler{directory: directory, connect: connect}
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	ws := GetWorkspace(c)
	if c.QueryBool("refresh") || !ws.DirectoryLoaded() {
		return c.Status(fiber.StatusOK).JSON(h.directory.Refresh(c.Context(), ws))
	}
	return c.Status(fiber.StatusOK).JSON(ws.Directory())
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	ws := GetWorkspace(c)
	if err := h.directory.Disconnect(c.Context(), ws, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ws.Directory())
}

func (h *PlatformHandler) StartConnect(c *fiber.Ctx) error {
	platform := models.Platform(c.Params("platform"))
	attempt, err := h.connect.Start(c.Context(), GetWorkspace(c), platform)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(attempt.Status())
}

func (h *PlatformHandler) ConnectStatus(c *fiber.Ctx) error {
	attempt, err := h.connect.Status(c.Context(), GetSessionID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(attempt.Status())
}

// WindowClosed is reported by the browser when the authorization popup goes
// away.
func (h *PlatformHandler) WindowClosed(c *fiber.Ctx) error {
	attempt, err := h.connect.WindowClosed(c.Context(), GetSessionID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(attempt.Status())
}

func (h *PlatformHandler) PopupBlocked(c *fiber.Ctx) error {
	attempt, err := h.connect.Blocked(c.Context(), GetSessionID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(attempt.Status())
}
