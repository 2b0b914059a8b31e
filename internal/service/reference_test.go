package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func TestListIngredientsPrefixFirst(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewReferenceService(repository.NewReferenceRepository(db), nil)
	for _, name := range []string{"brown sugar", "sugar", "salt", "icing sugar", "Sugar syrup"} {
		testhelpers.CreateIngredient(t, db, name, "g")
	}

	ingredients, err := svc.ListIngredients(context.Background(), "sug")
	require.NoError(t, err)

	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing.Name
	}
	assert.Equal(t, []string{"Sugar syrup", "sugar", "brown sugar", "icing sugar"}, names)
}

func TestImportIngredients(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	cache := &countingInvalidator{}
	svc := NewReferenceService(repository.NewReferenceRepository(db), cache)
	ctx := context.Background()

	inserted, err := svc.ImportIngredients(ctx, []models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: " milk ", MeasurementUnit: "ml"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)
	assert.Equal(t, 1, cache.calls)

	inserted, err = svc.ImportIngredients(ctx, []models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "flour", MeasurementUnit: "kg"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.ImportIngredients(ctx, []models.Ingredient{{Name: "", MeasurementUnit: "g"}})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestImportTags(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewReferenceService(repository.NewReferenceRepository(db), nil)
	ctx := context.Background()

	_, err := svc.ImportTags(ctx, []models.Tag{{Name: "breakfast", Color: "#E26C2D", Slug: "breakfast"}})
	require.NoError(t, err)

	_, err = svc.ImportTags(ctx, []models.Tag{{Name: "Breakfast", Color: "#fff", Slug: "breakfast"}})
	require.NoError(t, err)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Breakfast", tags[0].Name)
	assert.Equal(t, "#fff", tags[0].Color)

	tag, err := svc.GetTag(ctx, tags[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", tag.Slug)

	for _, color := range []string{"E26C2D", "#E26C2", "#GGGGGG", "#E26C2DFF"} {
		_, err := svc.ImportTags(ctx, []models.Tag{{Name: "bad", Color: color, Slug: "bad"}})
		assert.ErrorIs(t, err, apperror.ErrValidation, color)
	}

	_, err = svc.GetTag(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
