package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/service"
)

type SettingsHandler struct {
	s service.KeyService
}

func NewSettingsHandler(keys service.KeyService) *SettingsHandler {
	return &SettingsHandler{s: keys}
}

func (h *SettingsHandler) GetAPIKey(c *fiber.Ctx) error {
	view, err := h.s.Load(c.Context(), GetWorkspace(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *SettingsHandler) EditAPIKey(c *fiber.Ctx) error {
	var req models.APIKeySettings
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse request")
	}
	return c.Status(fiber.StatusOK).JSON(h.s.Edit(GetWorkspace(c), req))
}

func (h *SettingsHandler) SaveAPIKey(c *fiber.Ctx) error {
	saved, view, err := h.s.Save(c.Context(), GetWorkspace(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"saved":    saved,
		"settings": view,
	})
}

func (h *SettingsHandler) DeleteAPIKey(c *fiber.Ctx) error {
	view, err := h.s.Delete(c.Context(), GetWorkspace(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}
