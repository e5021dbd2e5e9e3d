package entity

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
)

type OutboxStatus string

const (
	OutboxNew    OutboxStatus = "NEW"
	OutboxSent   OutboxStatus = "SENT"
	OutboxFailed OutboxStatus = "FAILED"
	OutboxGaveUp OutboxStatus = "GAVE_UP"
)

type OutboxAggregate string

const (
	AggregateEvent OutboxAggregate = "event"
)

type OutboxEventType string

const (
	EventCreated OutboxEventType = "event_created"
	EventUpdated OutboxEventType = "event_updated"
	EventDeleted OutboxEventType = "event_deleted"
)

// OutboxEvent строка outbox_event. Payload уходит в Kafka как есть, ключ сообщения AggregateID.
type OutboxEvent struct {
	ID            int             `db:"id"`
	AggregateID   uuid.UUID       `db:"aggregate_id"`
	AggregateType OutboxAggregate `db:"aggregate_type"`
	EventType     OutboxEventType `db:"event_type"`
	Payload       json.RawMessage `db:"payload"`
	Status        OutboxStatus    `db:"status"`
	Attempts      int             `db:"attempts"`
	NextAttemptAt time.Time       `db:"next_attempt_at"`
	CreatedAt     time.Time       `db:"created_at"`
}

// LastAttempt очередная неудача исчерпает лимит попыток
func (e OutboxEvent) LastAttempt(maxAttempts int) bool {
	return e.Attempts+1 >= maxAttempts
}

// Notification сообщение, которое уходит в Kafka после успешной записи
type Notification struct {
	Type     OutboxEventType `json:"type"`
	EventID  string          `json:"eventId"`
	FamilyID string          `json:"familyId"`
	ActorID  string          `json:"actorId"`
	Event    *Event          `json:"event,omitempty"`
	SentAt   time.Time       `json:"sentAt"`
}
