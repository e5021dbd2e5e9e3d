package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"

	"familycal/internal/appers"
	"familycal/internal/application/common"
	"familycal/internal/application/entity"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/scope"
)

func newUUID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, viewer entity.Viewer, in entity.EventInput) (*entity.Event, error) {
	s.logger.Debugf("[user: %s] CreateEvent started", viewer.UserID)

	start, err := common.ParseTimestamp(in.StartTime)
	if err != nil {
		return nil, appers.ErrEventFormatDate
	}
	end, err := common.ParseTimestamp(in.EndTime)
	if err != nil {
		return nil, appers.ErrEventFormatDate
	}

	familyID, err := s.directory.FamilyOf(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		return nil, err
	}

	evt := &entity.Event{
		ID:              id,
		FamilyID:        familyID,
		Title:           in.Title,
		Description:     blankToNil(in.Description),
		Location:        blankToNil(in.Location),
		StartTime:       start,
		EndTime:         end,
		AssignedToID:    blankToNil(in.AssignedToID),
		EventCategoryID: blankToNil(in.EventCategoryID),
		CreatedByID:     viewer.UserID,
		IsRecurring:     in.IsRecurring,
		RecurrenceRule:  blankToNil(in.RecurrenceRule),
	}
	if in.RecurringEndDate != nil && *in.RecurringEndDate != "" {
		d, err := common.ParseDate(*in.RecurringEndDate)
		if err != nil {
			return nil, appers.ErrEventFormatDate
		}
		evt.RecurringEndDate = &d
	}

	if err := s.checkEvent(ctx, evt); err != nil {
		s.logger.Warnf("[event: %s] rejected: %v", evt.ID, err)
		return nil, err
	}

	payload, err := s.notification(entity.EventCreated, evt, viewer)
	if err != nil {
		return nil, err
	}
	if err := s.transactions.CreateEvent(ctx, evt, payload); err != nil {
		return nil, err
	}

	s.logger.Infof("[event: %s] created by %s (recurring: %t)", evt.ID, viewer.UserID, evt.IsRecurring)
	return s.reload(ctx, evt), nil
}

// GetEvent возвращает событие или вычисленное вхождение, если id вида <шаблон>_<дата>
func (s *ServiceImpl) GetEvent(ctx context.Context, viewer entity.Viewer, id string) (*entity.Event, error) {
	s.logger.Debugf("[event: %s] GetEvent started", id)

	templateID, date, isOccurrence := recurrence.ParseOccurrenceID(id)
	lookupID := id
	if isOccurrence {
		lookupID = templateID
	}

	evt, err := s.repo.GetEvent(ctx, lookupID)
	if err != nil {
		return nil, err
	}

	sc, err := scope.For(ctx, viewer, s.directory)
	if err != nil {
		return nil, err
	}
	if !sc.Visible(evt) {
		s.logger.Warnf("[event: %s] not visible to %s", evt.ID, viewer.UserID)
		return nil, appers.ErrAuthorizationDenied
	}

	if !isOccurrence {
		return evt, nil
	}
	if !evt.IsRecurring {
		return nil, appers.ErrEventNotFound
	}

	occurrences, err := s.generator.Expand(*evt, recurrence.NewWindow(date, recurrence.EndOfDay(date)))
	if err != nil {
		return nil, err
	}
	for i := range occurrences {
		if occurrences[i].ID == id {
			return &occurrences[i], nil
		}
	}
	return nil, appers.ErrEventNotFound
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, viewer entity.Viewer, id string, patch entity.EventPatch) (*entity.Event, error) {
	s.logger.Debugf("[event: %s] UpdateEvent started", id)

	evt, err := s.editableEvent(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if err := applyPatch(evt, patch); err != nil {
		return nil, err
	}
	if err := s.checkEvent(ctx, evt); err != nil {
		s.logger.Warnf("[event: %s] update rejected: %v", evt.ID, err)
		return nil, err
	}

	payload, err := s.notification(entity.EventUpdated, evt, viewer)
	if err != nil {
		return nil, err
	}
	if err := s.transactions.UpdateEvent(ctx, evt, payload); err != nil {
		return nil, err
	}

	s.logger.Infof("[event: %s] updated by %s", evt.ID, viewer.UserID)
	return s.reload(ctx, evt), nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, viewer entity.Viewer, id string) error {
	s.logger.Debugf("[event: %s] DeleteEvent started", id)

	evt, err := s.editableEvent(ctx, viewer, id)
	if err != nil {
		return err
	}

	payload, err := s.notification(entity.EventDeleted, evt, viewer)
	if err != nil {
		return err
	}
	if err := s.transactions.DeleteEvent(ctx, evt.ID, payload); err != nil {
		return err
	}

	s.logger.Infof("[event: %s] deleted by %s", evt.ID, viewer.UserID)
	return nil
}

// reload перечитывает событие вместе с именами категории и участников.
// Запись уже прошла, поэтому при ошибке чтения отдаём то, что есть.
func (s *ServiceImpl) reload(ctx context.Context, evt *entity.Event) *entity.Event {
	fresh, err := s.repo.GetEvent(ctx, evt.ID)
	if err != nil {
		s.logger.Warnf("[event: %s] reload after write failed: %v", evt.ID, err)
		return evt
	}
	return fresh
}

// editableEvent загружает событие, которое зритель вправе менять:
// создатель или родитель создателя либо исполнителя. Вхождения не редактируются.
func (s *ServiceImpl) editableEvent(ctx context.Context, viewer entity.Viewer, id string) (*entity.Event, error) {
	if _, _, ok := recurrence.ParseOccurrenceID(id); ok {
		return nil, appers.ErrOccurrenceImmutable
	}

	evt, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if evt.CreatedByID == viewer.UserID {
		return evt, nil
	}
	if viewer.Role == entity.RoleParent {
		related := []string{evt.CreatedByID}
		if evt.AssignedToID != nil {
			related = append(related, *evt.AssignedToID)
		}
		for _, userID := range related {
			ok, err := s.directory.IsParentOf(ctx, viewer.UserID, userID)
			if err != nil {
				return nil, fmt.Errorf("is parent of %s: %w", userID, err)
			}
			if ok {
				return evt, nil
			}
		}
	}

	s.logger.Warnf("[event: %s] %s %s is not allowed to modify", evt.ID, viewer.Role, viewer.UserID)
	return nil, appers.ErrAuthorizationDenied
}

// checkEvent время, правило повторения и ссылки на категорию и исполнителя
func (s *ServiceImpl) checkEvent(ctx context.Context, evt *entity.Event) error {
	if !evt.EndTime.After(evt.StartTime) {
		return appers.ErrInvalidEventTime
	}

	if evt.IsRecurring {
		if evt.RecurrenceRule == nil {
			return &appers.MalformedRuleError{Reason: "recurring event has no rule"}
		}
		if _, err := recurrence.Parse(*evt.RecurrenceRule); err != nil {
			return err
		}
	} else {
		evt.RecurrenceRule = nil
		evt.RecurringEndDate = nil
	}

	if evt.EventCategoryID != nil {
		category, err := s.repo.GetCategory(ctx, *evt.EventCategoryID)
		if err != nil {
			return err
		}
		if category.FamilyID != evt.FamilyID {
			return appers.ErrCategoryNotFound
		}
	}

	if evt.AssignedToID != nil && *evt.AssignedToID != evt.CreatedByID {
		familyID, err := s.directory.FamilyOf(ctx, *evt.AssignedToID)
		switch {
		case errors.Is(err, appers.ErrNoFamily):
			return appers.ErrAssigneeNotFound
		case err != nil:
			return err
		case familyID != evt.FamilyID:
			return appers.ErrAssigneeNotFound
		}
	}
	return nil
}

// applyPatch nil - поле не меняется, пустая строка очищает необязательное поле
func applyPatch(evt *entity.Event, patch entity.EventPatch) error {
	if patch.Title != nil {
		evt.Title = *patch.Title
	}
	if patch.Description != nil {
		evt.Description = blankToNil(patch.Description)
	}
	if patch.Location != nil {
		evt.Location = blankToNil(patch.Location)
	}
	if patch.StartTime != nil {
		t, err := common.ParseTimestamp(*patch.StartTime)
		if err != nil {
			return appers.ErrEventFormatDate
		}
		evt.StartTime = t
	}
	if patch.EndTime != nil {
		t, err := common.ParseTimestamp(*patch.EndTime)
		if err != nil {
			return appers.ErrEventFormatDate
		}
		evt.EndTime = t
	}
	if patch.AssignedToID != nil {
		evt.AssignedToID = blankToNil(patch.AssignedToID)
	}
	if patch.EventCategoryID != nil {
		evt.EventCategoryID = blankToNil(patch.EventCategoryID)
	}
	if patch.IsRecurring != nil {
		evt.IsRecurring = *patch.IsRecurring
	}
	if patch.RecurrenceRule != nil {
		evt.RecurrenceRule = blankToNil(patch.RecurrenceRule)
	}
	if patch.RecurringEndDate != nil {
		if *patch.RecurringEndDate == "" {
			evt.RecurringEndDate = nil
		} else {
			d, err := common.ParseDate(*patch.RecurringEndDate)
			if err != nil {
				return appers.ErrEventFormatDate
			}
			evt.RecurringEndDate = &d
		}
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
