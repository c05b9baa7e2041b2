package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postflow-studio/configs"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/service"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
	"github.com/maheshrc27/postflow-studio/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type AuthHandler struct {
	s          service.AuthService
	workspaces *service.Workspaces
	directory  service.DirectoryService
	media      service.MediaService
	cfg        config.Config
}

func NewAuthHandler(
	cfg config.Config,
	auth service.AuthService,
	workspaces *service.Workspaces,
	directory service.DirectoryService,
	media service.MediaService) *AuthHandler {
	return &AuthHandler{s: auth, workspaces: workspaces, directory: directory, media: media, cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse request")
	}
	if req.Email == "" {
		req.Email = req.Username
	}

	sid, err := gonanoid.New()
	if err != nil {
		return writeError(c, err)
	}
	session, err := h.s.Login(c.Context(), sid, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return h.startSession(c, sid, session)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req transfer.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse request")
	}

	sid, err := gonanoid.New()
	if err != nil {
		return writeError(c, err)
	}
	session, err := h.s.Register(c.Context(), sid, req)
	if err != nil {
		return writeError(c, err)
	}
	return h.startSession(c, sid, session)
}

func (h *AuthHandler) startSession(c *fiber.Ctx, sid string, session *models.Session) error {
	token, err := utils.GenerateToken(h.cfg.SecretKey, sid, h.cfg.SessionTTL)
	if err != nil {
		return writeError(c, err)
	}

	ws, _ := h.workspaces.Open(sid, session)
	h.directory.Refresh(c.Context(), ws)

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.SessionTTL),
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": session.Profile(),
	})
}

// Logout always clears the cookie, even when the session is already gone.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if tokenString := c.Cookies(h.cfg.CookieName); tokenString != "" {
		if claims, err := utils.ValidateToken(h.cfg.SecretKey, tokenString); err == nil {
			h.endSession(c.Context(), claims.SessionID)
		}
	}
	ClearSessionCookie(c, h.cfg.CookieName)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) endSession(ctx context.Context, sid string) {
	if err := h.s.Logout(ctx, sid); err != nil {
		slog.Info(err.Error())
	}
	if ws, ok := h.workspaces.Drop(sid); ok {
		h.media.Discard(ctx, ws.Release()...)
	}
}

func ClearSessionCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1, // Delete cookie
	})
}
