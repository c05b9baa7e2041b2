package api

import (
	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postflow-studio/configs"
	"github.com/maheshrc27/postflow-studio/internal/api/handlers"
	"github.com/maheshrc27/postflow-studio/internal/api/middleware"
	"github.com/maheshrc27/postflow-studio/internal/events"
	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/service"
)

// Services is everything the HTTP surface is built from.
type Services struct {
	Sessions   repository.SessionRepository
	Workspaces *service.Workspaces
	Hub        *events.Hub
	Auth       service.AuthService
	Directory  service.DirectoryService
	Connect    service.ConnectService
	Composer   service.ComposerService
	History    service.HistoryService
	Keys       service.KeyService
	Media      service.MediaService
}

func Register(app *fiber.App, cfg config.Config, s Services) {
	app.Get("/healthz", handlers.Healthz)

	auth := handlers.NewAuthHandler(cfg, s.Auth, s.Workspaces, s.Directory, s.Media)
	app.Post("/auth/login", auth.Login)
	app.Post("/auth/register", auth.Register)
	app.Post("/auth/logout", auth.Logout)

	authMiddleware := middleware.NewAuthMiddleware(cfg, s.Sessions, s.Workspaces, s.Directory)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler()
	api.Get("/me", user.GetUserInfo)

	platform := handlers.NewPlatformHandler(s.Directory, s.Connect)
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Delete("/accounts/:id", platform.DeleteSocialAccount)
	api.Post("/connect/:platform", platform.StartConnect)
	api.Get("/connect/attempts/:id", platform.ConnectStatus)
	api.Post("/connect/attempts/:id/closed", platform.WindowClosed)
	api.Post("/connect/attempts/:id/blocked", platform.PopupBlocked)

	composer := handlers.NewComposerHandler(s.Composer, s.Media)
	api.Get("/composer", composer.GetComposer)
	api.Post("/composer/reset", composer.Reset)
	api.Put("/composer/prompt", composer.SetPrompt)
	api.Put("/composer/boxes/:kind", composer.EditBox)
	api.Put("/composer/schedule", composer.SetSchedule)
	api.Post("/composer/media", composer.UploadMedia)
	api.Delete("/composer/media/:id", composer.RemoveMedia)
	api.Post("/composer/accounts/:id/toggle", composer.ToggleAccount)
	api.Post("/composer/accounts/:id/post-types/:type/toggle", composer.TogglePostType)
	api.Put("/composer/accounts/:id/cta", composer.SetCallToAction)
	api.Post("/composer/generate", composer.Generate)
	api.Post("/composer/submit", composer.Submit)

	post := handlers.NewPostHandler(s.History, s.Media)
	api.Get("/posts", post.ListPosts)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)

	settings := handlers.NewSettingsHandler(s.Keys)
	api.Get("/settings/api-key", settings.GetAPIKey)
	api.Patch("/settings/api-key", settings.EditAPIKey)
	api.Post("/settings/api-key/save", settings.SaveAPIKey)
	api.Delete("/settings/api-key", settings.DeleteAPIKey)

	stream := handlers.NewEventsHandler(s.Hub, 0)
	api.Get("/events", stream.Stream)
}

// ErrorHandler answers errors that escape a handler with the same JSON
// envelope the handlers use.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return c.Status(handlers.ErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
}
