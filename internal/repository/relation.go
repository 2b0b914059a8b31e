package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// relationSpec describes the key shape of one membership relation: the
// table, the column holding the target id and how to build a row.
type relationSpec struct {
	table        string
	targetColumn string
	model        func() interface{}
	row          func(userID, targetID uuid.UUID) interface{}
}

var relationSpecs = map[models.RelationKind]relationSpec{
	models.RelationFavorite: {
		table:        "favorites",
		targetColumn: "recipe_id",
		model:        func() interface{} { return &models.Favorite{} },
		row: func(userID, targetID uuid.UUID) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: targetID}
		},
	},
	models.RelationCart: {
		table:        "cart_items",
		targetColumn: "recipe_id",
		model:        func() interface{} { return &models.CartItem{} },
		row: func(userID, targetID uuid.UUID) interface{} {
			return &models.CartItem{UserID: userID, RecipeID: targetID}
		},
	},
	models.RelationSubscription: {
		table:        "subscriptions",
		targetColumn: "author_id",
		model:        func() interface{} { return &models.Subscription{} },
		row: func(userID, targetID uuid.UUID) interface{} {
			return &models.Subscription{UserID: userID, AuthorID: targetID}
		},
	},
}

func specFor(kind models.RelationKind) (relationSpec, error) {
	spec, ok := relationSpecs[kind]
	if !ok {
		return relationSpec{}, fmt.Errorf("unknown relation kind %d", kind)
	}
	return spec, nil
}

// RelationRepository stores favorites, cart items and subscriptions through
// one code path keyed by RelationKind.
type RelationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) *RelationRepository {
	return &RelationRepository{db: db}
}

// Exists reports whether the (user, target) row exists.
func (r *RelationRepository) Exists(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) (bool, error) {
	spec, err := specFor(kind)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).
		Table(spec.table).
		Where("user_id = ? AND "+spec.targetColumn+" = ?", userID, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the row. A concurrent duplicate surfaces as gorm.ErrDuplicatedKey.
func (r *RelationRepository) Create(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) error {
	spec, err := specFor(kind)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(spec.row(userID, targetID)).Error
}

// Delete removes the row and returns how many rows were deleted.
func (r *RelationRepository) Delete(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) (int64, error) {
	spec, err := specFor(kind)
	if err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND "+spec.targetColumn+" = ?", userID, targetID).
		Delete(spec.model())
	return result.RowsAffected, result.Error
}

// Targets returns which of the candidate targets the user holds a row for.
func (r *RelationRepository) Targets(ctx context.Context, kind models.RelationKind, userID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool, len(candidates))
	if len(candidates) == 0 {
		return found, nil
	}
	spec, err := specFor(kind)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	err = r.db.WithContext(ctx).
		Table(spec.table).
		Where("user_id = ? AND "+spec.targetColumn+" IN ?", userID, candidates).
		Pluck(spec.targetColumn, &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// Count returns the number of rows the user holds for the relation.
func (r *RelationRepository) Count(ctx context.Context, kind models.RelationKind, userID uuid.UUID) (int64, error) {
	spec, err := specFor(kind)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).Table(spec.table).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SubscribedAuthors returns one page of the authors the user follows,
// ordered by username, and the total number of subscriptions.
func (r *RelationRepository) SubscribedAuthors(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	total, err := r.Count(ctx, models.RelationSubscription, userID)
	if err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err = r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("users.username").
		Scopes(paginate(page, limit)).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}
