package handler

import (
	"github.com/gofiber/fiber/v2"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
)

// CreateEvent godoc
// @Summary     Создание события
// @Description Создает разовое или повторяющееся событие в семье пользователя
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header   string             true  "ID пользователя"
// @Param       X-User-Role  header   string             true  "Роль: parent или child"
// @Param       body         body     entity.EventInput  true  "Данные события"
// @Success     201          {object} entity.Event
// @Failure     400
// @Failure     401
// @Failure     404
// @Failure     500
// @tags        Event
// @Router      /v1/event [post]
func (h *HandlerImpl) CreateEvent(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	var in entity.EventInput
	if ok, err := h.parseBody(c, &in); !ok {
		return err
	}

	evt, err := h.usecase.CreateEvent(c.Context(), viewer, in)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(evt)
}

// GetEvent godoc
// @Summary     Получение события
// @Description Возвращает событие по идентификатору. Для id вида <id>_<YYYY-MM-DD> возвращает вхождение повторяющегося события.
// @Produce     json
// @Param       X-User-ID    header   string  true  "ID пользователя"
// @Param       X-User-Role  header   string  true  "Роль: parent или child"
// @Param       id           path     string  true  "ID события или вхождения"
// @Success     200          {object} entity.Event
// @Failure     401
// @Failure     403
// @Failure     404
// @Failure     500
// @tags        Event
// @Router      /v1/event/{id} [get]
func (h *HandlerImpl) GetEvent(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	evt, err := h.usecase.GetEvent(c.Context(), viewer, c.Params("id"))
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(evt)
}

// GetEventsByPeriod godoc
// @Summary     Календарь за период
// @Description Возвращает видимые пользователю события, повторяющиеся события разворачиваются во вхождения внутри окна. Без окна возвращаются все события, повторяющиеся как шаблоны.
// @Produce     json
// @Param       X-User-ID    header   string true  "ID пользователя"
// @Param       X-User-Role  header   string true  "Роль: parent или child"
// @Param       startDate    query    string false "Начало окна, RFC3339 или YYYY-MM-DD (например, 2026-01-01)"
// @Param       endDate      query    string false "Конец окна включительно, RFC3339 или YYYY-MM-DD (например, 2026-01-31)"
// @Success     200          {array}  entity.Event
// @Header      200          {integer} X-Expansion-Warnings "Число событий, которые не удалось развернуть"
// @Failure     400
// @Failure     401
// @Failure     500
// @tags        Event
// @Router      /v1/event [get]
func (h *HandlerImpl) GetEventsByPeriod(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	w, err := parseWindow(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	res, err := h.usecase.QueryCalendar(c.Context(), viewer, w)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	if len(res.Warnings) > 0 {
		h.logger.Warnf("[user: %s] %d events returned unexpanded", viewer.UserID, len(res.Warnings))
	}
	setWarningsHeader(c, len(res.Warnings))

	events := res.Events
	if events == nil {
		events = []entity.Event{}
	}
	return c.Status(fiber.StatusOK).JSON(events)
}

// ExportICS godoc
// @Summary     Экспорт календаря в iCalendar
// @Description Тот же календарь, что и GET /v1/event, в формате text/calendar. Нужна хотя бы одна граница окна.
// @Produce     text/calendar
// @Param       X-User-ID    header   string true "ID пользователя"
// @Param       X-User-Role  header   string true "Роль: parent или child"
// @Param       startDate    query    string false "Начало окна, RFC3339 или YYYY-MM-DD"
// @Param       endDate      query    string false "Конец окна, RFC3339 или YYYY-MM-DD"
// @Success     200
// @Failure     400
// @Failure     401
// @Failure     500
// @tags        Event
// @Router      /v1/event.ics [get]
func (h *HandlerImpl) ExportICS(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	w, err := parseWindow(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	if w.IsOpen() {
		return appers.SanitizeError(c, appers.ErrInvalidWindow)
	}

	body, res, err := h.usecase.ExportICS(c.Context(), viewer, w)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	setWarningsHeader(c, len(res.Warnings))
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="familycal.ics"`)
	return c.Status(fiber.StatusOK).Send(body)
}

// UpdateEvent godoc
// @Summary     Обновление события
// @Description Частично обновляет событие. Менять событие может создатель или родитель создателя либо исполнителя. Пустая строка очищает необязательное поле.
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header   string             true  "ID пользователя"
// @Param       X-User-Role  header   string             true  "Роль: parent или child"
// @Param       id           path     string             true  "ID события"
// @Param       body         body     entity.EventPatch  true  "Изменяемые поля"
// @Success     200          {object} entity.Event
// @Failure     400
// @Failure     401
// @Failure     403
// @Failure     404
// @Failure     500
// @tags        Event
// @Router      /v1/event/{id} [patch]
func (h *HandlerImpl) UpdateEvent(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	var patch entity.EventPatch
	if ok, err := h.parseBody(c, &patch); !ok {
		return err
	}

	evt, err := h.usecase.UpdateEvent(c.Context(), viewer, c.Params("id"), patch)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(evt)
}

// DeleteEvent godoc
// @Summary     Удаление события
// @Description Удаляет событие по идентификатору, для повторяющегося удаляется вся серия
// @Produce     json
// @Param       X-User-ID    header   string  true  "ID пользователя"
// @Param       X-User-Role  header   string  true  "Роль: parent или child"
// @Param       id           path     string  true  "ID события"
// @Success     200
// @Failure     400
// @Failure     401
// @Failure     403
// @Failure     404
// @Failure     500
// @tags        Event
// @Router      /v1/event/{id} [delete]
func (h *HandlerImpl) DeleteEvent(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	if err := h.usecase.DeleteEvent(c.Context(), viewer, c.Params("id")); err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"description": "ok"})
}
