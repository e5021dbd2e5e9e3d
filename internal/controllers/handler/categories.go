package handler

import (
	"github.com/gofiber/fiber/v2"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
)

// CreateCategory godoc
// @Summary     Создание категории
// @Description Создает категорию событий в семье пользователя
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header   string                true  "ID пользователя"
// @Param       X-User-Role  header   string                true  "Роль: parent или child"
// @Param       body         body     entity.CategoryInput  true  "Название и цвет"
// @Success     201          {object} entity.EventCategory
// @Failure     400
// @Failure     401
// @Failure     409
// @Failure     500
// @tags        Category
// @Router      /v1/category [post]
func (h *HandlerImpl) CreateCategory(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	var in entity.CategoryInput
	if ok, err := h.parseBody(c, &in); !ok {
		return err
	}

	category, err := h.usecase.CreateCategory(c.Context(), viewer, in)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// ListCategories godoc
// @Summary     Категории семьи
// @Produce     json
// @Param       X-User-ID    header   string  true  "ID пользователя"
// @Param       X-User-Role  header   string  true  "Роль: parent или child"
// @Success     200          {array}  entity.EventCategory
// @Failure     401
// @Failure     500
// @tags        Category
// @Router      /v1/category [get]
func (h *HandlerImpl) ListCategories(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	list, err := h.usecase.ListCategories(c.Context(), viewer)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	if list == nil {
		list = []entity.EventCategory{}
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

// UpdateCategory godoc
// @Summary     Обновление категории
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header   string                true  "ID пользователя"
// @Param       X-User-Role  header   string                true  "Роль: parent или child"
// @Param       id           path     string                true  "ID категории"
// @Param       body         body     entity.CategoryPatch  true  "Изменяемые поля"
// @Success     200          {object} entity.EventCategory
// @Failure     400
// @Failure     401
// @Failure     404
// @Failure     409
// @Failure     500
// @tags        Category
// @Router      /v1/category/{id} [patch]
func (h *HandlerImpl) UpdateCategory(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	var patch entity.CategoryPatch
	if ok, err := h.parseBody(c, &patch); !ok {
		return err
	}

	category, err := h.usecase.UpdateCategory(c.Context(), viewer, c.Params("id"), patch)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(category)
}

// DeleteCategory godoc
// @Summary     Удаление категории
// @Description Удаляет категорию, у событий этой категории ссылка обнуляется
// @Produce     json
// @Param       X-User-ID    header   string  true  "ID пользователя"
// @Param       X-User-Role  header   string  true  "Роль: parent или child"
// @Param       id           path     string  true  "ID категории"
// @Success     200
// @Failure     401
// @Failure     404
// @Failure     500
// @tags        Category
// @Router      /v1/category/{id} [delete]
func (h *HandlerImpl) DeleteCategory(c *fiber.Ctx) error {
	viewer, err := viewerFrom(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	if err := h.usecase.DeleteCategory(c.Context(), viewer, c.Params("id")); err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"description": "ok"})
}
