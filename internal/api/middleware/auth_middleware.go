package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postflow-studio/configs"
	"github.com/maheshrc27/postflow-studio/internal/api/handlers"
	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/service"
	"github.com/maheshrc27/postflow-studio/pkg/utils"
)

type AuthMiddleware struct {
	cfg        config.Config
	sessions   repository.SessionRepository
	workspaces *service.Workspaces
	directory  service.DirectoryService
}

func NewAuthMiddleware(
	cfg config.Config,
	sessions repository.SessionRepository,
	workspaces *service.Workspaces,
	directory service.DirectoryService) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg, sessions: sessions, workspaces: workspaces, directory: directory}
}

// AuthMiddleware resolves the session cookie to a stored session and its
// workspace. A workspace opened for the first time loads the directory.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not signed in",
			})
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil {
			handlers.ClearSessionCookie(c, m.cfg.CookieName)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		session, err := m.sessions.Load(c.Context(), claims.SessionID)
		if err != nil {
			slog.Info("session rejected", "session", claims.SessionID, "error", err)
			if _, ok := m.workspaces.Drop(claims.SessionID); ok {
				slog.Debug("workspace dropped", "session", claims.SessionID)
			}
			handlers.ClearSessionCookie(c, m.cfg.CookieName)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Session expired, sign in again",
			})
		}

		ws, created := m.workspaces.Open(claims.SessionID, session)
		if created {
			m.directory.Refresh(c.Context(), ws)
		}

		c.Locals(handlers.LocalSessionID, claims.SessionID)
		c.Locals(handlers.LocalWorkspace, ws)
		return c.Next()
	}
}
