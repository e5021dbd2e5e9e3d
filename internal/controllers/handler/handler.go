package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"familycal/internal/appers"
	"familycal/internal/application/common"
	"familycal/internal/application/entity"
	"familycal/internal/application/recurrence"
	use_cases "familycal/internal/application/use-cases"
	"familycal/pkg/httpserver"
	"familycal/pkg/validator"
)

type Handler interface {
	CreateEvent(c *fiber.Ctx) error
	GetEvent(c *fiber.Ctx) error
	GetEventsByPeriod(c *fiber.Ctx) error
	ExportICS(c *fiber.Ctx) error
	UpdateEvent(c *fiber.Ctx) error
	DeleteEvent(c *fiber.Ctx) error

	CreateCategory(c *fiber.Ctx) error
	ListCategories(c *fiber.Ctx) error
	UpdateCategory(c *fiber.Ctx) error
	DeleteCategory(c *fiber.Ctx) error

	HealthCheck(c *fiber.Ctx) error
}

type HandlerImpl struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewEventHandler(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *HandlerImpl {
	return &HandlerImpl{
		usecase: usecase,
		logger:  logger,
	}
}

// formatValidationErrors форматирует ошибки валидации в понятный формат для клиента
func formatValidationErrors(err error) fiber.Map {
	var errors []string
	if validationErrors, ok := err.(playgroundvalidator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()
			var message string
			switch tag {
			case "required", "required_if":
				message = fmt.Sprintf("поле '%s' обязательно для заполнения", field)
			case "min":
				message = fmt.Sprintf("поле '%s' должно содержать минимум %s символов", field, e.Param())
			case "max":
				message = fmt.Sprintf("поле '%s' должно содержать максимум %s символов", field, e.Param())
			case "rfc3339":
				message = fmt.Sprintf("поле '%s' должно быть в формате RFC3339 (например, 2026-01-20T15:00:00Z)", field)
			case "date_or_rfc3339":
				message = fmt.Sprintf("поле '%s' должно быть датой (2026-01-20) или в формате RFC3339", field)
			case "uuid":
				message = fmt.Sprintf("поле '%s' должно быть UUID", field)
			case "rrule":
				message = fmt.Sprintf("поле '%s' должно быть правилом повторения (например, FREQ=WEEKLY;BYDAY=TU)", field)
			case "hexcolor_short":
				message = fmt.Sprintf("поле '%s' должно быть цветом вида #RGB или #RRGGBB", field)
			default:
				message = fmt.Sprintf("поле '%s' не прошло валидацию: %s", field, tag)
			}
			errors = append(errors, message)
		}
	} else {
		errors = append(errors, err.Error())
	}
	return fiber.Map{
		"error":   "validation failed",
		"details": errors,
	}
}

// parseBody разбирает и валидирует тело запроса, при ошибке ответ уже записан
func (h *HandlerImpl) parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validator.Validate.Struct(out); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return false, c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}
	return true, nil
}

// parseWindow каждая граница необязательна. Дата без времени в startDate
// означает полночь, в endDate конец дня.
func parseWindow(c *fiber.Ctx) (recurrence.Window, error) {
	start, err := windowBound(c.Query("startDate"), false)
	if err != nil {
		return recurrence.Window{}, err
	}
	end, err := windowBound(c.Query("endDate"), true)
	if err != nil {
		return recurrence.Window{}, err
	}

	if from, ok := start.Get(); ok {
		if to, ok := end.Get(); ok && from.After(to) {
			return recurrence.Window{}, appers.ErrInvalidWindow
		}
	}
	return recurrence.Window{Start: start, End: end}, nil
}

func windowBound(raw string, endOfDay bool) (mo.Option[time.Time], error) {
	// клиенты иногда присылают даты в кавычках
	raw = strings.Trim(raw, `"`)
	if raw == "" {
		return mo.None[time.Time](), nil
	}

	if day, err := time.ParseInLocation(time.DateOnly, raw, time.UTC); err == nil {
		if endOfDay {
			day = recurrence.EndOfDay(day)
		}
		return mo.Some(day), nil
	}

	// '+' смещения в неэкранированной query-строке превращается в пробел
	t, err := common.ParseTimestamp(strings.ReplaceAll(raw, " ", "+"))
	if err != nil {
		return mo.None[time.Time](), appers.ErrEventFormatDate
	}
	return mo.Some(t), nil
}

// HealthCheck godoc
// @Summary     Проверка состояния сервиса
// @Description Проверяет доступность PostgreSQL, Kafka и каталога пользователей. Возвращает детальную информацию о состоянии каждого компонента.
// @Accept      json
// @Produce     json
// @Success     200   {object} entity.HealthCheckResponse "Все сервисы доступны"
// @Failure     503   {object} entity.HealthCheckResponse "Один или несколько сервисов недоступны"
// @tags        Health
// @Router      /health [get]
func (h *HandlerImpl) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	status := h.usecase.HealthCheck(ctx)

	health := entity.HealthCheckResponse{
		Status:  status.Healthy(),
		Message: "success",
		Version: common.Version,
		Checks: entity.HealthCheckResponseData{
			Database:  healthItem("postgresql", status.Database, "Database connection failed"),
			Kafka:     healthItem("kafka", status.Kafka, "Kafka connection failed"),
			Directory: healthItem("directory", status.Directory, "User directory unavailable"),
		},
	}

	if !health.Status {
		health.Message = "Some services are unavailable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}
	return c.Status(fiber.StatusOK).JSON(health)
}

func healthItem(kind string, err error, desc string) entity.HealthCheckItem {
	item := entity.HealthCheckItem{Status: err == nil, Type: kind}
	if err != nil {
		item.Error = desc
	}
	return item
}

func setWarningsHeader(c *fiber.Ctx, n int) {
	c.Set(httpserver.ExpansionWarningsHeader, strconv.Itoa(n))
}
