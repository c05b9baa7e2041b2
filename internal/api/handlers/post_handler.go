package handlers

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/service"
)

type PostHandler struct {
	s     service.HistoryService
	media service.MediaService
}

func NewPostHandler(history service.HistoryService, media service.MediaService) *PostHandler {
	return &PostHandler{s: history, media: media}
}

// ListPosts returns one list when status is given, otherwise both.
func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	ws := GetWorkspace(c)
	status := models.PostListKind(strings.ToLower(c.Query("status")))
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", service.DefaultPageSize)

	if status == "" {
		hist := h.s.List(c.Context(), ws, service.HistoryQuery{
			PublishedPage:   c.QueryInt("published_page", page),
			UnpublishedPage: c.QueryInt("unpublished_page", page),
			Limit:           limit,
		})
		return c.Status(fiber.StatusOK).JSON(hist)
	}
	if !status.Valid() {
		return badRequest(c, "status must be published or unpublished")
	}

	posts, err := h.s.Page(c.Context(), ws, status, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	ws := GetWorkspace(c)
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return badRequest(c, "Unable to parse form")
	}

	var upd models.PostUpdate
	if raw := c.FormValue("generated_content"); raw != "" {
		if !json.Valid([]byte(raw)) {
			return badRequest(c, "generated_content must be JSON")
		}
		upd.GeneratedContent = json.RawMessage(raw)
	}
	if raw := c.FormValue("scheduled_at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return badRequest(c, "scheduled_at must be an RFC 3339 time")
		}
		upd.ScheduledAt = at
	}

	for _, fh := range form.File["media_files"] {
		f, err := fh.Open()
		if err != nil {
			h.media.Discard(c.Context(), upd.Media...)
			return writeError(c, err)
		}
		item, err := h.media.Stage(c.Context(), ws.SessionID, fh.Filename, f, fh.Size)
		f.Close()
		if err != nil {
			h.media.Discard(c.Context(), upd.Media...)
			return writeError(c, err)
		}
		upd.Media = append(upd.Media, item)
	}
	defer h.media.Discard(c.Context(), upd.Media...)

	if err := h.s.Update(c.Context(), ws, c.Params("id"), upd); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post updated",
	})
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	if err := h.s.Delete(c.Context(), GetWorkspace(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
