package handler

import (
	"github.com/gofiber/fiber/v2"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
	"familycal/pkg/validator"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	viewerKey = "viewer"
)

// Identify достаёт зрителя из заголовков, которые выставляет шлюз после проверки токена
func Identify(c *fiber.Ctx) error {
	userID := c.Get(HeaderUserID)
	role := entity.Role(c.Get(HeaderUserRole))

	if err := validator.Validate.Var(userID, "required,uuid"); err != nil || !role.Valid() {
		return appers.SanitizeError(c, appers.ErrUnauthenticated)
	}

	c.Locals(viewerKey, entity.Viewer{UserID: userID, Role: role})
	return c.Next()
}

func viewerFrom(c *fiber.Ctx) (entity.Viewer, error) {
	viewer, ok := c.Locals(viewerKey).(entity.Viewer)
	if !ok {
		return entity.Viewer{}, appers.ErrUnauthenticated
	}
	return viewer, nil
}
