package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 500

// ReferenceRepository reads and bulk-imports ingredients and tags.
type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// IngredientsByIDs returns the ingredients among ids that exist.
func (r *ReferenceRepository) IngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error
	return ingredients, err
}

// GetIngredient returns one ingredient or gorm.ErrRecordNotFound.
func (r *ReferenceRepository) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// SearchIngredients returns ingredients whose name contains query, case
// insensitively, ordered by name. An empty query returns everything.
func (r *ReferenceRepository) SearchIngredients(ctx context.Context, query string) ([]models.Ingredient, error) {
	db := r.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if query != "" {
		db = db.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(query))+"%")
	}
	var ingredients []models.Ingredient
	err := db.Find(&ingredients).Error
	return ingredients, err
}

// ImportIngredients inserts ingredients, skipping (name, unit) pairs that
// already exist. It returns the number of inserted rows.
func (r *ReferenceRepository) ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		CreateInBatches(&ingredients, importBatchSize)
	return result.RowsAffected, result.Error
}

// ListTags returns every tag ordered by name.
func (r *ReferenceRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

// GetTag returns one tag or gorm.ErrRecordNotFound.
func (r *ReferenceRepository) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// CountTags returns how many of ids name existing tags.
func (r *ReferenceRepository) CountTags(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// ImportTags upserts tags by slug, refreshing name and colour.
func (r *ReferenceRepository) ImportTags(ctx context.Context, tags []models.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "color"}),
		}).
		CreateInBatches(&tags, importBatchSize)
	return result.RowsAffected, result.Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
