package repository

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartIngredients(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewShoppingRepository(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	buyer := testhelpers.CreateUser(t, db, "buyer")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")
	first := testhelpers.CreateRecipe(t, db, author, "first", map[*models.Ingredient]int{flour: 200, salt: 5})
	second := testhelpers.CreateRecipe(t, db, author, "second", map[*models.Ingredient]int{flour: 100})
	testhelpers.CreateRecipe(t, db, author, "ignored", map[*models.Ingredient]int{flour: 999})

	for _, r := range []*models.Recipe{first, second} {
		require.NoError(t, db.Create(&models.CartItem{UserID: buyer.ID, RecipeID: r.ID}).Error)
	}

	rows, err := repo.CartIngredients(ctx, buyer.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ShoppingRow{
		{Name: "Flour", Unit: "g", Amount: 200},
		{Name: "Salt", Unit: "g", Amount: 5},
		{Name: "Flour", Unit: "g", Amount: 100},
	}, rows)

	rows, err = repo.CartIngredients(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
