package appers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type ErrorResp struct {
	StatusCode int    `json:"statusCode,omitempty"`
	StatusDesc string `json:"statusDesc,omitempty"`
}

func (e ErrorResp) Error() string {
	return e.StatusDesc
}

var (
	ErrEventNotFound = ErrorResp{
		http.StatusNotFound,
		"событие не найдено",
	}
	ErrEventAlreadyExists = ErrorResp{
		http.StatusConflict,
		"событие уже создано",
	}
	ErrCategoryNotFound = ErrorResp{
		http.StatusNotFound,
		"категория не найдена",
	}
	ErrCategoryAlreadyExists = ErrorResp{
		http.StatusConflict,
		"категория с таким названием уже существует в семье",
	}
	ErrAssigneeNotFound = ErrorResp{
		http.StatusNotFound,
		"назначенный пользователь не найден",
	}
	ErrEventFormatDate = ErrorResp{
		StatusCode: http.StatusBadRequest,
		StatusDesc: "неверный формат даты, ожидается RFC3339 (например, 2026-01-20T15:00:00Z)",
	}
	ErrInvalidWindow = ErrorResp{
		StatusCode: http.StatusBadRequest,
		StatusDesc: "startDate и endDate задаются вместе, startDate не позже endDate",
	}
	ErrInvalidEventTime = ErrorResp{
		StatusCode: http.StatusBadRequest,
		StatusDesc: "время окончания события должно быть после времени начала",
	}
	ErrOccurrenceImmutable = ErrorResp{
		StatusCode: http.StatusBadRequest,
		StatusDesc: "вхождение повторяющегося события нельзя изменить, редактируйте исходное событие",
	}
	ErrAuthorizationDenied = ErrorResp{
		StatusCode: http.StatusForbidden,
		StatusDesc: "нет доступа к событию",
	}
	ErrUnauthenticated = ErrorResp{
		StatusCode: http.StatusUnauthorized,
		StatusDesc: "пользователь не определён",
	}
	ErrNoFamily = ErrorResp{
		StatusCode: http.StatusForbidden,
		StatusDesc: "пользователь не состоит в семье",
	}

	// ErrUnboundedQuery бесконечное правило без окна запроса, разворачивать нечего.
	ErrUnboundedQuery = errors.New("unbounded recurrence requires a query window end")

	// ErrIterationLimit окно слишком далеко от начала правила, потолок шагов исчерпан раньше.
	ErrIterationLimit = errors.New("recurrence iteration limit reached")
)

// MalformedRuleError правило повторения не разбирается.
// Ошибка локальна для одного события и не валит весь запрос.
type MalformedRuleError struct {
	Rule   string
	Reason string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("malformed recurrence rule %q: %s", e.Rule, e.Reason)
}

func (e *MalformedRuleError) StatusCode() int {
	return http.StatusBadRequest
}

func SanitizeError(c *fiber.Ctx, err error) error {
	var errResp ErrorResp
	var ruleErr *MalformedRuleError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &errResp):
		return c.Status(errResp.StatusCode).JSON(fiber.Map{
			"message": errResp.StatusDesc,
		})
	case errors.As(err, &ruleErr):
		return NewErr(c, ruleErr.StatusCode(), ruleErr)
	case errors.As(err, &fiberErr):
		return NewErr(c, fiberErr.Code, fiberErr)
	default:
		return NewErr(c, http.StatusInternalServerError, err)
	}
}

func NewErr(ctx *fiber.Ctx, status int, err error) error {
	return ctx.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}
