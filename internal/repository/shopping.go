package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingRow is one (ingredient, amount) observation from a cart recipe.
type ShoppingRow struct {
	Name   string
	Unit   string
	Amount int64
}

type ShoppingRepository struct {
	db *gorm.DB
}

func NewShoppingRepository(db *gorm.DB) *ShoppingRepository {
	return &ShoppingRepository{db: db}
}

// CartIngredients fans out cart -> recipe -> recipe ingredients in a single
// join and returns the raw rows, one per recipe ingredient.
func (r *ShoppingRepository) CartIngredients(ctx context.Context, userID uuid.UUID) ([]ShoppingRow, error) {
	var rows []ShoppingRow
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = cart_items.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("cart_items.user_id = ?", userID).
		Scan(&rows).Error
	return rows, err
}
