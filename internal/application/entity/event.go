package entity

import (
	"time"
)

// Event хранимое событие календаря: разовое или шаблон повторяющегося.
// Вхождения повторяющихся событий используют ту же структуру, см. OriginalEventID.
type Event struct {
	ID               string     `json:"eventId"`
	FamilyID         string     `json:"familyId"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	Location         *string    `json:"location"`
	StartTime        time.Time  `json:"startTime"`
	EndTime          time.Time  `json:"endTime"`
	AssignedToID     *string    `json:"assignedToId"`
	EventCategoryID  *string    `json:"eventCategoryId"`
	CreatedByID      string     `json:"createdById"`
	IsRecurring      bool       `json:"isRecurring"`
	RecurrenceRule   *string    `json:"recurrenceRule"`
	RecurringEndDate *time.Time `json:"recurringEndDate"`
	OriginalEventID  *string    `json:"originalEventId"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	AssignedTo *UserRef     `json:"assignedTo,omitempty"`
	CreatedBy  *UserRef     `json:"createdBy,omitempty"`
	Category   *CategoryRef `json:"category,omitempty"`
}

// UserRef краткая информация о пользователе для ответа
type UserRef struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// CategoryRef краткая информация о категории для ответа
type CategoryRef struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Color      string `json:"color"`
}

// Duration длительность события, сохраняется у всех вхождений
func (e *Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// IsOccurrence true для вычисленного вхождения повторяющегося события
func (e *Event) IsOccurrence() bool {
	return e.OriginalEventID != nil
}

// EventInput тело запроса на создание события
type EventInput struct {
	Title            string  `json:"title" validate:"required,min=1,max=255"`
	Description      *string `json:"description" validate:"omitempty,max=4000"`
	Location         *string `json:"location" validate:"omitempty,max=255"`
	StartTime        string  `json:"startTime" validate:"required,rfc3339"`
	EndTime          string  `json:"endTime" validate:"required,rfc3339"`
	AssignedToID     *string `json:"assignedToId" validate:"omitempty,uuid"`
	EventCategoryID  *string `json:"eventCategoryId" validate:"omitempty,uuid"`
	IsRecurring      bool    `json:"isRecurring"`
	RecurrenceRule   *string `json:"recurrenceRule" validate:"required_if=IsRecurring true,omitempty,rrule"`
	RecurringEndDate *string `json:"recurringEndDate" validate:"omitempty,date_or_rfc3339"`
}

// EventPatch тело запроса на частичное обновление события, nil - поле не меняется
type EventPatch struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description      *string `json:"description" validate:"omitempty,max=4000"`
	Location         *string `json:"location" validate:"omitempty,max=255"`
	StartTime        *string `json:"startTime" validate:"omitempty,rfc3339"`
	EndTime          *string `json:"endTime" validate:"omitempty,rfc3339"`
	AssignedToID     *string `json:"assignedToId" validate:"omitempty,uuid"`
	EventCategoryID  *string `json:"eventCategoryId" validate:"omitempty,uuid"`
	IsRecurring      *bool   `json:"isRecurring"`
	RecurrenceRule   *string `json:"recurrenceRule" validate:"omitempty,rrule"`
	RecurringEndDate *string `json:"recurringEndDate" validate:"omitempty,date_or_rfc3339"`
}
