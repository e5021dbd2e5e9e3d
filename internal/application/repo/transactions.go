package repo

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
	"familycal/pkg/config"
)

type Transactions interface {
	CreateEvent(ctx context.Context, in *entity.Event, payload []byte) error
	UpdateEvent(ctx context.Context, in *entity.Event, payload []byte) error
	DeleteEvent(ctx context.Context, id string, payload []byte) error
	ApplyFamilyLink(ctx context.Context, msg entity.FamilyLinkMessage) error
	GetOperationsFromOutbox(ctx context.Context, c config.RelayConfig) ([]entity.OutboxEvent, error)
	MarkSent(ctx context.Context, outboxID int) error
}
type TransactionsImpl struct {
	repo   *RepoImpl
	logger *zap.SugaredLogger
}

func NewTransactions(repo *RepoImpl, logger *zap.SugaredLogger) *TransactionsImpl {
	return &TransactionsImpl{repo: repo, logger: logger}
}

// CreateEvent событие и запись outbox в одной транзакции
func (t *TransactionsImpl) CreateEvent(ctx context.Context, in *entity.Event, payload []byte) error {
	if len(payload) == 0 {
		t.logger.Warnf("[ID %s] empty payload for outbox", in.ID)
	}

	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		inserted, err := t.repo.CreateEvent(ctx, in)
		if err != nil {
			t.logger.Errorf("[ID %s] insert event failed: %v", in.ID, err)
			return err
		}
		if !inserted {
			// запись уже существует
			t.logger.Infof("[ID %s] idempotent hit: Event already exists", in.ID)
			return appers.ErrEventAlreadyExists
		}

		return t.insertOutbox(ctx, in.ID, entity.EventCreated, payload)
	})
}

func (t *TransactionsImpl) UpdateEvent(ctx context.Context, in *entity.Event, payload []byte) error {
	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := t.repo.UpdateEvent(ctx, in); err != nil {
			t.logger.Errorf("[ID %s] update event failed: %v", in.ID, err)
			return err
		}
		return t.insertOutbox(ctx, in.ID, entity.EventUpdated, payload)
	})
}

func (t *TransactionsImpl) DeleteEvent(ctx context.Context, id string, payload []byte) error {
	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := t.repo.DeleteEvent(ctx, id); err != nil {
			t.logger.Errorf("[ID %s] delete event failed: %v", id, err)
			return err
		}
		return t.insertOutbox(ctx, id, entity.EventDeleted, payload)
	})
}

// ApplyFamilyLink применяет сообщение каталога: участники и связь сохраняются вместе
func (t *TransactionsImpl) ApplyFamilyLink(ctx context.Context, msg entity.FamilyLinkMessage) error {
	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if msg.Action == entity.FamilyUnlinked {
			return t.repo.DeleteFamilyLink(ctx, msg.ParentID, msg.ChildID)
		}

		members := []entity.FamilyMember{
			{UserID: msg.ParentID, FamilyID: msg.FamilyID, DisplayName: msg.ParentName},
			{UserID: msg.ChildID, FamilyID: msg.FamilyID, DisplayName: msg.ChildName},
		}
		for _, m := range members {
			if err := t.repo.SaveFamilyMember(ctx, m); err != nil {
				return err
			}
		}

		return t.repo.SaveFamilyLink(ctx, entity.FamilyLink{
			ParentID: msg.ParentID,
			ChildID:  msg.ChildID,
			FamilyID: msg.FamilyID,
		})
	})
}

func (t *TransactionsImpl) GetOperationsFromOutbox(ctx context.Context, c config.RelayConfig) ([]entity.OutboxEvent, error) {
	var events []entity.OutboxEvent
	err := t.repo.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		events, err = t.repo.ReserveOutboxBatch(txCtx, c.Lease, c.BatchSize, c.MaxAttempts)
		return err
	})
	if err != nil {
		t.logger.Errorw("reserve outbox batch failed", "err", err)
		return nil, err
	}
	return events, nil
}

func (t *TransactionsImpl) MarkSent(ctx context.Context, outboxID int) error {
	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		t.logger.Debugf("[ID %d] mark outbox as sent", outboxID)
		result, err := t.repo.db.Exec(ctx, markSentSQL, outboxID, entity.OutboxSent)
		if err != nil {
			return fmt.Errorf("outbox mark sent: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("[ID %d] outbox not found", outboxID)
		}
		return nil
	})
}

func (t *TransactionsImpl) insertOutbox(ctx context.Context, eventID string, eventType entity.OutboxEventType, payload []byte) error {
	aggregateID, err := uuid.FromString(eventID)
	if err != nil {
		return fmt.Errorf("outbox aggregate id %q: %w", eventID, err)
	}

	evt := entity.OutboxEvent{
		AggregateID:   aggregateID,
		AggregateType: entity.AggregateEvent,
		EventType:     eventType,
		Payload:       payload,
		Status:        entity.OutboxNew,
	}
	if err := t.repo.InsertOutbox(ctx, &evt); err != nil {
		t.logger.Errorf("[ID %s] insert outbox failed: %v", eventID, err)
		return err
	}
	return nil
}
