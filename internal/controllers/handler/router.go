package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	"familycal/pkg/config"
)

type Router struct {
	handler Handler
	app     *fiber.App
	conf    *config.Config
	logger  *zap.SugaredLogger
}

func NewRouter(handler Handler, app *fiber.App, conf *config.Config, logger *zap.SugaredLogger) *Router {
	return &Router{
		logger:  logger,
		app:     app,
		conf:    conf,
		handler: handler,
	}
}

// RegisterRouter /health открыт, всё под /calendar/api/v1 требует заголовков пользователя
func (r *Router) RegisterRouter() {
	r.app.Get("/health", r.handler.HealthCheck)

	calendar := r.app.Group("/calendar")
	calendar.Use("/swagger/*", swagger.New(swagger.Config{
		DeepLinking: false,
		URL:         "/calendar/swagger/doc.json",
	}))

	v1 := calendar.Group("/api/v1", Identify)

	events := v1.Group("/event")
	events.Get("/", r.handler.GetEventsByPeriod)
	events.Post("/", r.handler.CreateEvent)
	events.Get("/:id", r.handler.GetEvent)
	events.Patch("/:id", r.handler.UpdateEvent)
	events.Delete("/:id", r.handler.DeleteEvent)
	v1.Get("/event.ics", r.handler.ExportICS)

	categories := v1.Group("/category")
	categories.Get("/", r.handler.ListCategories)
	categories.Post("/", r.handler.CreateCategory)
	categories.Patch("/:id", r.handler.UpdateCategory)
	categories.Delete("/:id", r.handler.DeleteCategory)

	r.logger.Infof("routes registered, swagger at %s", r.conf.Server.SwaggerUrl)
}
