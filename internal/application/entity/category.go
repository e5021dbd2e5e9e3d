package entity

import "time"

type EventCategory struct {
	ID        string    `json:"categoryId"`
	FamilyID  string    `json:"familyId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryInput struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color string `json:"color" validate:"required,hexcolor_short"`
}

type CategoryPatch struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,hexcolor_short"`
}
