package handlers

import (
	"errors"
	"log/slog"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow-studio/internal/client"
	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/service"
)

const (
	LocalSessionID = "session_id"
	LocalWorkspace = "workspace"
)

func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(LocalSessionID).(string)
	return sid
}

func GetWorkspace(c *fiber.Ctx) *service.Workspace {
	ws, _ := c.Locals(LocalWorkspace).(*service.Workspace)
	return ws
}

// ErrorStatus maps an error to the status returned to the browser.
// Backend client errors keep their status, other backend failures become
// 502.
func ErrorStatus(err error) int {
	var (
		incompatible *service.IncompatibleMediaError
		urlErr       *url.Error
	)
	switch {
	case errors.As(err, &incompatible), errors.Is(err, service.ErrSubmitInFlight):
		return fiber.StatusConflict
	case errors.Is(err, repository.ErrNoSession):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrAttemptNotFound):
		return fiber.StatusNotFound
	case service.IsValidation(err), errors.Is(err, service.ErrUnsupported):
		return fiber.StatusBadRequest
	}
	if status := client.StatusOf(err); status != 0 {
		if status >= 400 && status < 500 {
			return status
		}
		return fiber.StatusBadGateway
	}
	if errors.As(err, &urlErr) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func writeError(c *fiber.Ctx, err error) error {
	status := ErrorStatus(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error(err.Error(), "path", c.Path())
	} else {
		slog.Info(err.Error())
	}

	body := fiber.Map{"error": err.Error()}
	var incompatible *service.IncompatibleMediaError
	if errors.As(err, &incompatible) {
		body["issues"] = incompatible.Issues
	}
	var missing *service.MissingPostTypesError
	if errors.As(err, &missing) {
		body["accounts"] = missing.Accounts
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
