package service

import (
	"context"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
)

func (s *ServiceImpl) CreateCategory(ctx context.Context, viewer entity.Viewer, in entity.CategoryInput) (*entity.EventCategory, error) {
	familyID, err := s.directory.FamilyOf(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		return nil, err
	}

	category := &entity.EventCategory{
		ID:       id,
		FamilyID: familyID,
		Name:     in.Name,
		Color:    in.Color,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Infof("[category: %s] created in family %s", category.ID, familyID)
	return category, nil
}

func (s *ServiceImpl) ListCategories(ctx context.Context, viewer entity.Viewer) ([]entity.EventCategory, error) {
	familyID, err := s.directory.FamilyOf(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, familyID)
}

func (s *ServiceImpl) UpdateCategory(ctx context.Context, viewer entity.Viewer, id string, patch entity.CategoryPatch) (*entity.EventCategory, error) {
	category, err := s.familyCategory(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.Color != nil {
		category.Color = *patch.Color
	}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory события категории остаются, ссылка на неё обнуляется
func (s *ServiceImpl) DeleteCategory(ctx context.Context, viewer entity.Viewer, id string) error {
	if _, err := s.familyCategory(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.logger.Infof("[category: %s] deleted by %s", id, viewer.UserID)
	return nil
}

// familyCategory категория другой семьи для зрителя не существует
func (s *ServiceImpl) familyCategory(ctx context.Context, viewer entity.Viewer, id string) (*entity.EventCategory, error) {
	familyID, err := s.directory.FamilyOf(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.FamilyID != familyID {
		return nil, appers.ErrCategoryNotFound
	}
	return category, nil
}
