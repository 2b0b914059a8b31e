//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostgresSchemaConstraints(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t, "../../migrations")
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	fan := testhelpers.CreateUser(t, db, "fan")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")
	lunch := testhelpers.CreateTag(t, db, "lunch", "#E26C2D")
	recipe := testhelpers.CreateRecipe(t, db, author, "bread", map[*models.Ingredient]int{flour: 500}, lunch)

	t.Run("amount bounds", func(t *testing.T) {
		for _, amount := range []int{0, 32767} {
			err := db.Exec("UPDATE recipe_ingredients SET amount = ? WHERE recipe_id = ?", amount, recipe.ID).Error
			assert.Error(t, err, "amount %d accepted", amount)
		}
	})

	t.Run("self subscription", func(t *testing.T) {
		err := db.Create(&models.Subscription{UserID: author.ID, AuthorID: author.ID}).Error
		assert.Error(t, err)
	})

	t.Run("duplicate favorite", func(t *testing.T) {
		relations := NewRelationRepository(db)
		require.NoError(t, relations.Create(ctx, models.RelationFavorite, fan.ID, recipe.ID))
		err := relations.Create(ctx, models.RelationFavorite, fan.ID, recipe.ID)
		assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
	})

	t.Run("duplicate ingredient import", func(t *testing.T) {
		written, err := NewReferenceRepository(db).ImportIngredients(ctx, []models.Ingredient{
			{Name: "Flour", MeasurementUnit: "g"},
		})
		require.NoError(t, err)
		assert.Zero(t, written)
	})
}

func TestPostgresReplaceIsAtomic(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t, "../../migrations")
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")
	lunch := testhelpers.CreateTag(t, db, "lunch", "#E26C2D")
	recipe := testhelpers.CreateRecipe(t, db, author, "bread", map[*models.Ingredient]int{flour: 500}, lunch)

	err := repo.Replace(ctx, CompositionChange{
		Recipe:      &models.Recipe{ID: recipe.ID, Name: "changed", Image: recipe.Image, Text: "x", CookingTime: 5},
		Ingredients: []models.RecipeIngredient{{IngredientID: uuid.New(), Amount: 1}},
		TagIDs:      []uuid.UUID{lunch.ID},
	})
	require.Error(t, err, "unknown ingredient must violate the foreign key")

	stored, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "bread", stored.Name)
	require.Len(t, stored.Ingredients, 1)
	assert.Equal(t, flour.ID, stored.Ingredients[0].IngredientID)

	err = repo.Replace(ctx, CompositionChange{
		Recipe: &models.Recipe{ID: uuid.New(), Name: "ghost", Image: "x", Text: "x", CookingTime: 1},
	})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
