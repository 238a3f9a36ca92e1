// Package relation implements the shared edge machinery behind the follow,
// favorite and shopping cart toggles: guarded creation, guarded deletion and
// batch edge-set lookups. The three edge kinds only differ in their record
// type and uniqueness key, so the operations are generic over the entity.
package relation

import (
	"Foodgram-Backend/domain"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateEdge inserts the edge unless an equal edge already exists. The
// existence check is an early exit only; the storage unique index is the
// authoritative guard, and its violation is translated to ErrDuplicateEdge
// so a lost race surfaces as the same conflict.
func CreateEdge[E any](ctx context.Context, db *gorm.DB, edge *E, query string, args ...any) error {
	var count int64
	if err := db.WithContext(ctx).Model(new(E)).Where(query, args...).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrDuplicateEdge
	}

	if err := db.WithContext(ctx).Create(edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEdge
		}
		return err
	}
	return nil
}

// DeleteEdge removes the matching edge and reports ErrEdgeNotFound when
// nothing was deleted. Removal of an absent edge is an error, not a no-op.
func DeleteEdge[E any](ctx context.Context, db *gorm.DB, query string, args ...any) error {
	res := db.WithContext(ctx).Where(query, args...).Delete(new(E))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrEdgeNotFound
	}
	return nil
}

// Exists reports whether an edge matching the condition is present.
func Exists[E any](ctx context.Context, db *gorm.DB, query string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(E)).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// EdgeSet resolves, in one query, the set of ids reachable from the
// condition. Annotating a batch of N entities costs one EdgeSet call plus N
// map probes instead of N existence queries.
func EdgeSet[E any](ctx context.Context, db *gorm.DB, column string, query string, args ...any) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	if err := db.WithContext(ctx).Model(new(E)).Where(query, args...).Pluck(column, &ids).Error; err != nil {
		return nil, err
	}

	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// GroupCount returns per-id counts of rows grouped by the given column.
// Ids without rows are simply absent from the result.
func GroupCount[E any](ctx context.Context, db *gorm.DB, column string, query string, args ...any) (map[uuid.UUID]int64, error) {
	type row struct {
		ID    uuid.UUID
		Total int64
	}

	var rows []row
	if err := db.WithContext(ctx).
		Model(new(E)).
		Select(column+" as id, COUNT(*) as total").
		Where(query, args...).
		Group(column).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.ID] = r.Total
	}
	return counts, nil
}
