package httpserver

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"familycal/internal/appers"
	"familycal/pkg/config"
	"familycal/pkg/metrics"
)

// ExpansionWarningsHeader число событий, которые не удалось развернуть
const ExpansionWarningsHeader = "X-Expansion-Warnings"

func NewFiber(conf config.Server, m *metrics.Metrics, gatherer prometheus.Gatherer) *fiber.App {
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 1024 * 100,
			BodyLimit:      conf.BodyLimit,
			ErrorHandler:   appers.SanitizeError,
		},
	)

	app.Use(
		cors.New(cors.Config{
			AllowOrigins:  "*", // Разрешаем все источники по умолчанию
			ExposeHeaders: "Authorization," + ExpansionWarningsHeader,
		}),
		recover.New(),
		logger.New(),
	)

	// Prometheus middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Получаем путь из роута, если доступен, иначе используем фактический путь
		path := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			path = r.Path
		}

		method := strings.ToUpper(c.Method())
		if r := c.Route(); r != nil && r.Method != "" {
			method = strings.ToUpper(r.Method)
		}

		status := c.Response().StatusCode()
		if err != nil {
			// статус ещё не записан, его выставит ErrorHandler
			status = statusOf(err)
		}
		statusStr := strconv.Itoa(status)
		m.API.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.API.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())
		return err
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return app
}

func statusOf(err error) int {
	var (
		fe      *fiber.Error
		resp    appers.ErrorResp
		ruleErr *appers.MalformedRuleError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &resp):
		return resp.StatusCode
	case errors.As(err, &ruleErr):
		return ruleErr.StatusCode()
	default:
		return fiber.StatusInternalServerError
	}
}
