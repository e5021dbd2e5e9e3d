package entity

import "time"

type FamilyLinkAction string

const (
	FamilyLinked   FamilyLinkAction = "linked"
	FamilyUnlinked FamilyLinkAction = "unlinked"
)

// FamilyLink связь родитель-ребёнок, локальная проекция каталога пользователей
type FamilyLink struct {
	ParentID string    `json:"parentId"`
	ChildID  string    `json:"childId"`
	FamilyID string    `json:"familyId"`
	LinkedAt time.Time `json:"linkedAt"`
}

// FamilyLinkMessage сообщение из топика сервиса пользователей
type FamilyLinkMessage struct {
	Action     FamilyLinkAction `json:"action" validate:"required,oneof=linked unlinked"`
	ParentID   string           `json:"parentId" validate:"required,uuid"`
	ChildID    string           `json:"childId" validate:"required,uuid"`
	FamilyID   string           `json:"familyId" validate:"required_if=Action linked,omitempty,uuid"`
	ParentName string           `json:"parentName" validate:"omitempty,max=100"`
	ChildName  string           `json:"childName" validate:"omitempty,max=100"`
}

// FamilyMember участник семьи, отображаемое имя нужно для ответа API
type FamilyMember struct {
	UserID      string `json:"userId"`
	FamilyID    string `json:"familyId"`
	DisplayName string `json:"displayName"`
}
