package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
)

// Таблицы family_members и family_links - локальная проекция каталога пользователей,
// наполняется из Kafka. Методы чтения реализуют каталог для режима directory.mode=postgres.

func (r *RepoImpl) SaveFamilyMember(ctx context.Context, m entity.FamilyMember) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("upsert", "family_member"))

	if _, err = r.db.Exec(ctx, upsertFamilyMember, m.UserID, m.FamilyID, m.DisplayName); err != nil {
		return fmt.Errorf("upsert family member %s: %w", m.UserID, err)
	}
	return nil
}

func (r *RepoImpl) SaveFamilyLink(ctx context.Context, l entity.FamilyLink) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("upsert", "family_link"))
	r.logger.Debugf("[parent: %s, child: %s] saving family link", l.ParentID, l.ChildID)

	if _, err = r.db.Exec(ctx, upsertFamilyLink, l.ParentID, l.ChildID, l.FamilyID); err != nil {
		return fmt.Errorf("upsert family link: %w", err)
	}
	return nil
}

func (r *RepoImpl) DeleteFamilyLink(ctx context.Context, parentID, childID string) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("delete", "family_link"))
	r.logger.Debugf("[parent: %s, child: %s] deleting family link", parentID, childID)

	result, err := r.db.Exec(ctx, deleteFamilyLink, parentID, childID)
	if err != nil {
		return fmt.Errorf("delete family link: %w", err)
	}
	if result.RowsAffected() == 0 {
		r.logger.Warnf("[parent: %s, child: %s] family link not found", parentID, childID)
	}
	return nil
}

func (r *RepoImpl) ChildrenOf(ctx context.Context, parentID string) (children []string, err error) {
	defer func(done func(error)) { done(err) }(r.observe("select", "children"))

	rows, err := r.db.Query(ctx, childrenOf, parentID)
	if err != nil {
		return nil, fmt.Errorf("children of %s: %w", parentID, err)
	}
	defer rows.Close()

	children = make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("children rows err: %w", err)
	}
	return children, nil
}

func (r *RepoImpl) IsParentOf(ctx context.Context, parentID, childID string) (ok bool, err error) {
	defer func(done func(error)) { done(err) }(r.observe("select", "is_parent"))

	if err = r.db.QueryRow(ctx, isParentOf, parentID, childID).Scan(&ok); err != nil {
		if isInvalidTextError(err) {
			return false, nil
		}
		return false, fmt.Errorf("is parent of: %w", err)
	}
	return ok, nil
}

func (r *RepoImpl) FamilyOf(ctx context.Context, userID string) (familyID string, err error) {
	defer func(done func(error)) { done(err) }(r.observe("select", "family"))

	err = r.db.QueryRow(ctx, familyOf, userID).Scan(&familyID)
	switch {
	case err == nil:
		return familyID, nil
	case errors.Is(err, pgx.ErrNoRows), isInvalidTextError(err):
		return "", appers.ErrNoFamily
	default:
		return "", fmt.Errorf("family of %s: %w", userID, err)
	}
}
