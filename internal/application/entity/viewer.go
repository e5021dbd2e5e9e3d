package entity

type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

func (r Role) Valid() bool {
	return r == RoleParent || r == RoleChild
}

// Viewer пользователь, от имени которого выполняется запрос.
// Приходит из уже проверенного шлюзом токена, в БД не сохраняется.
type Viewer struct {
	UserID string
	Role   Role
}
