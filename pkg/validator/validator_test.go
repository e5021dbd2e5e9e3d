package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"familycal/internal/application/entity"
)

func strp(s string) *string { return &s }

func validEvent() entity.EventInput {
	return entity.EventInput{
		Title:     "Бассейн",
		StartTime: "2024-01-02T09:00:00Z",
		EndTime:   "2024-01-02T09:30:00Z",
	}
}

func TestEventInput(t *testing.T) {
	tests := []struct {
		name  string
		tweak func(in *entity.EventInput)
		ok    bool
	}{
		{"plain event", func(*entity.EventInput) {}, true},
		{"missing title", func(in *entity.EventInput) { in.Title = "" }, false},
		{"bad start", func(in *entity.EventInput) { in.StartTime = "02.01.2024 09:00" }, false},
		{"bad assignee", func(in *entity.EventInput) { in.AssignedToID = strp("kid") }, false},
		{"recurring without rule", func(in *entity.EventInput) { in.IsRecurring = true }, false},
		{"recurring with rule", func(in *entity.EventInput) {
			in.IsRecurring = true
			in.RecurrenceRule = strp("FREQ=WEEKLY;BYDAY=TU")
		}, true},
		{"recurring with broken rule", func(in *entity.EventInput) {
			in.IsRecurring = true
			in.RecurrenceRule = strp("FREQ=WEEKLY;INTERVAL=0")
		}, false},
		{"end date as date", func(in *entity.EventInput) {
			in.IsRecurring = true
			in.RecurrenceRule = strp("FREQ=DAILY")
			in.RecurringEndDate = strp("2024-06-30")
		}, true},
		{"end date as timestamp", func(in *entity.EventInput) { in.RecurringEndDate = strp("2024-06-30T00:00:00Z") }, true},
		{"end date garbage", func(in *entity.EventInput) { in.RecurringEndDate = strp("30/06/2024") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validEvent()
			tt.tweak(&in)
			err := Validate.Struct(in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCategoryInput(t *testing.T) {
	for color, ok := range map[string]bool{
		"#0af":    true,
		"#00AAFF": true,
		"0af":     false,
		"#0afa":   false,
		"#ggg":    false,
	} {
		err := Validate.Struct(entity.CategoryInput{Name: "Спорт", Color: color})
		assert.Equal(t, ok, err == nil, color)
	}

	assert.Error(t, Validate.Struct(entity.CategoryInput{Color: "#fff"}))
}

func TestFamilyLinkMessage(t *testing.T) {
	const (
		parent = "7d0f6b7c-9a0c-4f25-8c57-9f8d3a1b2c3d"
		child  = "1c2b3a4d-5e6f-4a1b-9c8d-7e6f5a4b3c2d"
		family = "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	)

	assert.NoError(t, Validate.Struct(entity.FamilyLinkMessage{
		Action: entity.FamilyLinked, ParentID: parent, ChildID: child, FamilyID: family,
	}))
	assert.NoError(t, Validate.Struct(entity.FamilyLinkMessage{
		Action: entity.FamilyUnlinked, ParentID: parent, ChildID: child,
	}))
	assert.Error(t, Validate.Struct(entity.FamilyLinkMessage{
		Action: entity.FamilyLinked, ParentID: parent, ChildID: child,
	}))
	assert.Error(t, Validate.Struct(entity.FamilyLinkMessage{
		Action: "adopted", ParentID: parent, ChildID: child, FamilyID: family,
	}))
}
