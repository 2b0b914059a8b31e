package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompositionChange is the unit of work applied by Create and Replace. The
// recipe carries the scalar fields; Ingredients and TagIDs are the complete
// new composition.
type CompositionChange struct {
	Recipe      *models.Recipe
	Ingredients []models.RecipeIngredient
	TagIDs      []uuid.UUID
}

// RecipeFilter narrows ListRecipes. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Page        int
	Limit       int
}

// AuthorRecipeCount is one row of a grouped recipe count.
type AuthorRecipeCount struct {
	AuthorID uuid.UUID
	Count    int64
}

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts the recipe row and its composition in one transaction.
func (r *RecipeRepository) Create(ctx context.Context, change CompositionChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(change.Recipe).Error; err != nil {
			return fmt.Errorf("failed to insert recipe: %w", err)
		}
		return insertComposition(tx, change)
	})
}

// Replace swaps the scalar fields and the whole composition of an existing
// recipe. The row is locked first so concurrent replaces of the same recipe
// are serialised; readers never observe the intermediate empty state.
func (r *RecipeRepository) Replace(ctx context.Context, change CompositionChange) error {
	id := change.Recipe.ID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Recipe
		if err := lockForUpdate(tx).Select("id").First(&current, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}

		// pub_date is assigned once on insert and never rewritten.
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":         change.Recipe.Name,
			"image":        change.Recipe.Image,
			"text":         change.Recipe.Text,
			"cooking_time": change.Recipe.CookingTime,
		}).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		return insertComposition(tx, change)
	})
}

func insertComposition(tx *gorm.DB, change CompositionChange) error {
	recipeID := change.Recipe.ID

	if len(change.Ingredients) > 0 {
		rows := make([]models.RecipeIngredient, len(change.Ingredients))
		for i, ing := range change.Ingredients {
			rows[i] = models.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: ing.IngredientID,
				Amount:       ing.Amount,
			}
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert recipe ingredients: %w", err)
		}
	}

	if len(change.TagIDs) > 0 {
		rows := make([]models.RecipeTag, len(change.TagIDs))
		for i, tagID := range change.TagIDs {
			rows[i] = models.RecipeTag{RecipeID: recipeID, TagID: tagID}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert recipe tags: %w", err)
		}
	}

	return nil
}

// lockForUpdate adds FOR UPDATE where the dialect supports it. SQLite
// transactions already hold the database write lock.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// GetByID returns the recipe with author, tags and ingredients loaded.
func (r *RecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Scopes(preloadComposition).
		First(&recipe, "recipes.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// GetRow loads the recipe row alone, without author or composition.
func (r *RecipeRepository) GetRow(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Exists reports whether a recipe with the id exists.
func (r *RecipeRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns one page of recipes, newest first, and the total match count.
func (r *RecipeRepository) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if filter.AuthorID != nil {
			db = db.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			db = db.Where("recipes.id IN (?)", r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
		}
		if filter.FavoritedBy != nil {
			db = db.Where("recipes.id IN (?)", r.db.Model(&models.Favorite{}).
				Select("recipe_id").
				Where("user_id = ?", *filter.FavoritedBy))
		}
		if filter.InCartOf != nil {
			db = db.Where("recipes.id IN (?)", r.db.Model(&models.CartItem{}).
				Select("recipe_id").
				Where("user_id = ?", *filter.InCartOf))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	if err := r.db.WithContext(ctx).
		Scopes(filtered, preloadComposition, paginate(filter.Page, filter.Limit)).
		Order("recipes.pub_date DESC").
		Order("recipes.id").
		Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	return recipes, total, nil
}

// RecentByAuthor returns up to limit of the author's newest recipes without
// their composition. A negative limit returns all of them.
func (r *RecipeRepository) RecentByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC").
		Limit(limit).
		Find(&recipes).Error
	return recipes, err
}

// CountByAuthors returns the number of recipes of each author.
func (r *RecipeRepository) CountByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []AuthorRecipeCount
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS count").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Count
	}
	return counts, nil
}

// Delete removes a recipe together with its composition and every favorite
// and cart row pointing at it.
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Recipe
		if err := lockForUpdate(tx).Select("id").First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		for _, child := range []interface{}{
			&models.RecipeIngredient{},
			&models.RecipeTag{},
			&models.Favorite{},
			&models.CartItem{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete %T rows: %w", child, err)
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

func preloadComposition(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients.Ingredient")
}

func paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
