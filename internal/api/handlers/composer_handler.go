package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/service"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
	"google.golang.org/api/youtube/v3"
)

type ComposerHandler struct {
	s     service.ComposerService
	media service.MediaService
}

func NewComposerHandler(composer service.ComposerService, media service.MediaService) *ComposerHandler {
	return &ComposerHandler{s: composer, media: media}
}

// edit runs fn against the caller's composer and answers with the updated
// view.
func (h *ComposerHandler) edit(c *fiber.Ctx, fn func(comp *service.Composer) error) error {
	var view service.ComposerView
	err := GetWorkspace(c).WithComposer(func(comp *service.Composer) error {
		if err := fn(comp); err != nil {
			return err
		}
		view = comp.View()
		return nil
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *ComposerHandler) GetComposer(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(GetWorkspace(c).ComposerView())
}

func (h *ComposerHandler) Reset(c *fiber.Ctx) error {
	view, err := h.s.Reset(c.Context(), GetWorkspace(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *ComposerHandler) SetPrompt(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse request")
	}
	return h.edit(c, func(comp *service.Composer) error {
		comp.SetPrompt(req.Prompt)
		return nil
	})
}

func (h *ComposerHandler) EditBox(c *fiber.Ctx) error {
	kind := models.ContentKind(c.Params("kind"))
	switch kind {
	case models.ContentYouTube:
		var snippet youtube.VideoSnippet
		if err := json.Unmarshal(c.Body(), &snippet); err != nil {
			return badRequest(c, "Unable to parse request")
		}
		return h.edit(c, func(comp *service.Composer) error {
			return comp.EditYouTube(snippet)
		})
	case models.ContentShortVideo, models.ContentLongVideo:
		var box models.CaptionBox
		if err := json.Unmarshal(c.Body(), &box); err != nil {
			return badRequest(c, "Unable to parse request")
		}
		return h.edit(c, func(comp *service.Composer) error {
			return comp.EditCaption(kind, box)
		})
	default:
		return writeError(c, service.ErrUnknownBox)
	}
}

func (h *ComposerHandler) SetSchedule(c *fiber.Ctx) error {
	var req struct {
		ScheduledTime transfer.FlexibleTime `json:"scheduled_time"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid scheduled time")
	}
	return h.edit(c, func(comp *service.Composer) error {
		return comp.SetScheduledTime(req.ScheduledTime.Time())
	})
}

// UploadMedia stages every file of the "files" field and attaches it to the
// draft. Files are checked before any of them is attached.
func (h *ComposerHandler) UploadMedia(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return badRequest(c, "Unable to parse form")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return badRequest(c, "No files selected")
	}

	ws := GetWorkspace(c)
	var staged []models.MediaItem
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.media.Discard(c.Context(), staged...)
			return writeError(c, err)
		}
		item, err := h.media.Stage(c.Context(), ws.SessionID, fh.Filename, f, fh.Size)
		f.Close()
		if err != nil {
			h.media.Discard(c.Context(), staged...)
			return writeError(c, err)
		}
		staged = append(staged, item)
	}

	var view service.ComposerView
	err = ws.WithComposer(func(comp *service.Composer) error {
		for _, item := range staged {
			comp.AttachMedia(item)
		}
		view = comp.View()
		return nil
	})
	if err != nil {
		h.media.Discard(c.Context(), staged...)
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *ComposerHandler) RemoveMedia(c *fiber.Ctx) error {
	var removed models.MediaItem
	resp := h.edit(c, func(comp *service.Composer) error {
		var err error
		removed, err = comp.RemoveMedia(c.Params("id"))
		return err
	})
	if removed.Key != "" {
		h.media.Discard(c.Context(), removed)
	}
	return resp
}

func (h *ComposerHandler) ToggleAccount(c *fiber.Ctx) error {
	return h.edit(c, func(comp *service.Composer) error {
		_, err := comp.ToggleAccount(c.Params("id"))
		return err
	})
}

func (h *ComposerHandler) TogglePostType(c *fiber.Ctx) error {
	return h.edit(c, func(comp *service.Composer) error {
		_, err := comp.TogglePostType(c.Params("id"), c.Params("type"))
		return err
	})
}

func (h *ComposerHandler) SetCallToAction(c *fiber.Ctx) error {
	var req struct {
		CallToAction string `json:"call_to_action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse request")
	}
	return h.edit(c, func(comp *service.Composer) error {
		return comp.SetCallToAction(c.Params("id"), req.CallToAction)
	})
}

func (h *ComposerHandler) Generate(c *fiber.Ctx) error {
	view, err := h.s.Generate(c.Context(), GetWorkspace(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *ComposerHandler) Submit(c *fiber.Ctx) error {
	var req struct {
		ConfirmIncompatible bool `json:"confirm_incompatible"`
	}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return badRequest(c, "Unable to parse request")
		}
	}

	result, err := h.s.Submit(c.Context(), GetWorkspace(c), req.ConfirmIncompatible)
	if err != nil {
		var incompatible *service.IncompatibleMediaError
		if errors.As(err, &incompatible) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   err.Error(),
				"issues":  incompatible.Issues,
				"confirm": "resubmit with confirm_incompatible to skip these accounts",
			})
		}
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
