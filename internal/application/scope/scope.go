package scope

import (
	"context"
	"fmt"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
)

// Directory источник связей родитель-ребёнок
type Directory interface {
	ChildrenOf(ctx context.Context, parentID string) ([]string, error)
}

// Filter условие для хранилища: создатель из CreatorIDs ИЛИ исполнитель из AssigneeIDs
type Filter struct {
	CreatorIDs  []string
	AssigneeIDs []string
}

// Scope видимость событий для одного зрителя.
// Реализации только ChildScope и ParentScope.
type Scope interface {
	Viewer() entity.Viewer
	Visible(e *entity.Event) bool
	Filter() Filter
	sealed()
}

// For строит область видимости под роль зрителя.
// Для родителя список детей запрашивается один раз.
func For(ctx context.Context, viewer entity.Viewer, dir Directory) (Scope, error) {
	switch viewer.Role {
	case entity.RoleChild:
		return ChildScope{userID: viewer.UserID}, nil
	case entity.RoleParent:
		children, err := dir.ChildrenOf(ctx, viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("children of %s: %w", viewer.UserID, err)
		}
		return NewParentScope(viewer.UserID, children), nil
	default:
		return nil, appers.ErrUnauthenticated
	}
}

// ChildScope ребёнок видит события, которые создал сам или которые назначены ему
type ChildScope struct {
	userID string
}

func NewChildScope(userID string) ChildScope {
	return ChildScope{userID: userID}
}

func (s ChildScope) Viewer() entity.Viewer {
	return entity.Viewer{UserID: s.userID, Role: entity.RoleChild}
}

func (s ChildScope) Visible(e *entity.Event) bool {
	return e.CreatedByID == s.userID || (e.AssignedToID != nil && *e.AssignedToID == s.userID)
}

func (s ChildScope) Filter() Filter {
	return Filter{
		CreatorIDs:  []string{s.userID},
		AssigneeIDs: []string{s.userID},
	}
}

func (ChildScope) sealed() {}

// ParentScope родитель видит созданные им события и события, назначенные его детям
type ParentScope struct {
	userID   string
	children []string
	isChild  map[string]struct{}
}

func NewParentScope(userID string, children []string) ParentScope {
	isChild := make(map[string]struct{}, len(children))
	for _, id := range children {
		isChild[id] = struct{}{}
	}
	return ParentScope{
		userID:   userID,
		children: append([]string(nil), children...),
		isChild:  isChild,
	}
}

func (s ParentScope) Viewer() entity.Viewer {
	return entity.Viewer{UserID: s.userID, Role: entity.RoleParent}
}

func (s ParentScope) Children() []string {
	return s.children
}

func (s ParentScope) Visible(e *entity.Event) bool {
	if e.CreatedByID == s.userID {
		return true
	}
	if e.AssignedToID == nil {
		return false
	}
	_, ok := s.isChild[*e.AssignedToID]
	return ok
}

func (s ParentScope) Filter() Filter {
	return Filter{
		CreatorIDs:  []string{s.userID},
		AssigneeIDs: append([]string{}, s.children...),
	}
}

func (ParentScope) sealed() {}
