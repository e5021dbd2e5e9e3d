package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
)

func (r *RepoImpl) CreateCategory(ctx context.Context, c *entity.EventCategory) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("insert", "category"))
	r.logger.Debugf("[category: %s] start inserting into DB", c.ID)

	err = r.db.QueryRow(ctx, createCategory, c.ID, c.FamilyID, c.Name, c.Color).Scan(&c.CreatedAt)
	switch {
	case err == nil:
		return nil
	case isDuplicateKeyError(err):
		r.logger.Warnf("[category: %s] name %q already used in family %s", c.ID, c.Name, c.FamilyID)
		return appers.ErrCategoryAlreadyExists
	default:
		r.logger.Errorf("[category: %s] error inserting into DB: %v", c.ID, err)
		return fmt.Errorf("error inserting category: %w", err)
	}
}

func (r *RepoImpl) GetCategory(ctx context.Context, id string) (c *entity.EventCategory, err error) {
	defer func(done func(error)) { done(err) }(r.observe("select", "category"))

	var cat entity.EventCategory
	err = r.db.QueryRow(ctx, getCategoryByID, id).Scan(&cat.ID, &cat.FamilyID, &cat.Name, &cat.Color, &cat.CreatedAt)
	switch {
	case err == nil:
		return &cat, nil
	case errors.Is(err, pgx.ErrNoRows), isInvalidTextError(err):
		return nil, appers.ErrCategoryNotFound
	default:
		return nil, fmt.Errorf("error getting category: %w", err)
	}
}

func (r *RepoImpl) ListCategories(ctx context.Context, familyID string) (list []entity.EventCategory, err error) {
	defer func(done func(error)) { done(err) }(r.observe("select", "categories"))
	r.logger.Debugf("[family: %s] start listing categories", familyID)

	rows, err := r.db.Query(ctx, listCategories, familyID)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	list = make([]entity.EventCategory, 0)
	for rows.Next() {
		var cat entity.EventCategory
		if err := rows.Scan(&cat.ID, &cat.FamilyID, &cat.Name, &cat.Color, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("categories rows err: %w", err)
	}
	return list, nil
}

func (r *RepoImpl) UpdateCategory(ctx context.Context, c *entity.EventCategory) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("update", "category"))
	r.logger.Debugf("[category: %s] start updating in DB", c.ID)

	result, err := r.db.Exec(ctx, updateCategory, c.ID, c.Name, c.Color)
	switch {
	case err == nil && result.RowsAffected() == 0:
		return appers.ErrCategoryNotFound
	case err == nil:
		return nil
	case isDuplicateKeyError(err):
		return appers.ErrCategoryAlreadyExists
	default:
		r.logger.Errorf("[category: %s] error updating in DB: %v", c.ID, err)
		return fmt.Errorf("error updating category: %w", err)
	}
}

func (r *RepoImpl) DeleteCategory(ctx context.Context, id string) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("delete", "category"))
	r.logger.Debugf("[category: %s] start deleting from DB", id)

	result, err := r.db.Exec(ctx, deleteCategory, id)
	if err != nil {
		r.logger.Errorf("[category: %s] error deleting from DB: %v", id, err)
		return fmt.Errorf("error deleting category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return appers.ErrCategoryNotFound
	}
	return nil
}
