package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	ws := GetWorkspace(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": ws.Profile(),
	})
}

func Healthz(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
	})
}
