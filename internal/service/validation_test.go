package service

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReference struct {
	ingredients map[uuid.UUID]models.Ingredient
	tags        map[uuid.UUID]bool
	lookups     int
}

func (f *fakeReference) IngredientsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	f.lookups++
	var out []models.Ingredient
	for _, id := range ids {
		if ing, ok := f.ingredients[id]; ok {
			out = append(out, ing)
		}
	}
	return out, nil
}

func (f *fakeReference) CountTags(_ context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if f.tags[id] {
			n++
		}
	}
	return n, nil
}

func amount(v int) *int { return &v }

func newFakeReference(ingredients, tags int) (*fakeReference, []uuid.UUID, []uuid.UUID) {
	ref := &fakeReference{ingredients: map[uuid.UUID]models.Ingredient{}, tags: map[uuid.UUID]bool{}}
	var ingIDs, tagIDs []uuid.UUID
	for i := 0; i < ingredients; i++ {
		id := uuid.New()
		ref.ingredients[id] = models.Ingredient{ID: id, Name: "ingredient", MeasurementUnit: "g"}
		ingIDs = append(ingIDs, id)
	}
	for i := 0; i < tags; i++ {
		id := uuid.New()
		ref.tags[id] = true
		tagIDs = append(tagIDs, id)
	}
	return ref, ingIDs, tagIDs
}

func TestValidateComposition(t *testing.T) {
	ref, ing, tags := newFakeReference(3, 2)
	v := NewCompositionValidator(ref, ref)
	ctx := context.Background()

	tests := []struct {
		name        string
		ingredients []IngredientAmount
		tags        []uuid.UUID
		want        error
	}{
		{
			name: "valid",
			ingredients: []IngredientAmount{
				{IngredientID: ing[0], Amount: amount(200)},
				{IngredientID: ing[1], Amount: amount(5)},
			},
			tags: tags,
		},
		{
			name: "no ingredients",
			tags: tags,
			want: ErrNoIngredients,
		},
		{
			name:        "no ingredients and no tags reports ingredients first",
			ingredients: []IngredientAmount{},
			want:        ErrNoIngredients,
		},
		{
			name:        "no tags",
			ingredients: []IngredientAmount{{IngredientID: ing[0], Amount: amount(1)}},
			want:        ErrNoTags,
		},
		{
			name:        "unknown ingredient",
			ingredients: []IngredientAmount{{IngredientID: uuid.New(), Amount: amount(1)}},
			tags:        tags,
			want:        ErrUnknownIngredient,
		},
		{
			name: "duplicate ingredient",
			ingredients: []IngredientAmount{
				{IngredientID: ing[0], Amount: amount(1)},
				{IngredientID: ing[0], Amount: amount(2)},
			},
			tags: tags,
			want: ErrDuplicateIngredient,
		},
		{
			name: "duplicate reported regardless of amounts",
			ingredients: []IngredientAmount{
				{IngredientID: ing[0], Amount: amount(0)},
				{IngredientID: ing[1]},
				{IngredientID: ing[0], Amount: amount(40000)},
			},
			tags: tags,
			want: ErrDuplicateIngredient,
		},
		{
			name:        "missing amount",
			ingredients: []IngredientAmount{{IngredientID: ing[0]}},
			tags:        tags,
			want:        ErrInvalidAmount,
		},
		{
			name:        "zero amount",
			ingredients: []IngredientAmount{{IngredientID: ing[0], Amount: amount(0)}},
			tags:        tags,
			want:        ErrInvalidAmount,
		},
		{
			name:        "amount above storage width",
			ingredients: []IngredientAmount{{IngredientID: ing[0], Amount: amount(32767)}},
			tags:        tags,
			want:        ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			ingredients: []IngredientAmount{{IngredientID: ing[0], Amount: amount(-5)}},
			tags:        tags,
			want:        ErrInvalidAmount,
		},
		{
			name:        "unknown tag",
			ingredients: []IngredientAmount{{IngredientID: ing[0], Amount: amount(1)}},
			tags:        []uuid.UUID{tags[0], uuid.New()},
			want:        ErrUnknownTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, err := v.ValidateComposition(ctx, tt.ingredients, tt.tags)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Len(t, comp.Ingredients, len(tt.ingredients))
				return
			}
			assert.Nil(t, comp)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errors.Is(err, apperror.ErrValidation))
		})
	}
}

func TestValidateCompositionAmountBounds(t *testing.T) {
	ref, ing, tags := newFakeReference(1, 1)
	v := NewCompositionValidator(ref, ref)

	for _, value := range []int{models.MinAmount, 2, 1000, models.MaxAmount} {
		comp, err := v.ValidateComposition(context.Background(),
			[]IngredientAmount{{IngredientID: ing[0], Amount: amount(value)}}, tags)
		require.NoError(t, err, "amount %d", value)
		assert.Equal(t, value, comp.Ingredients[0].Amount)
	}
}

func TestValidateCompositionCollapsesRepeatedTags(t *testing.T) {
	ref, ing, tags := newFakeReference(1, 2)
	v := NewCompositionValidator(ref, ref)

	comp, err := v.ValidateComposition(context.Background(),
		[]IngredientAmount{{IngredientID: ing[0], Amount: amount(3)}},
		[]uuid.UUID{tags[0], tags[1], tags[0]})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tags[0], tags[1]}, comp.TagIDs)
}

func TestValidateCompositionLooksUpIngredientsOnce(t *testing.T) {
	ref, ing, tags := newFakeReference(3, 1)
	v := NewCompositionValidator(ref, ref)

	entries := make([]IngredientAmount, len(ing))
	for i, id := range ing {
		entries[i] = IngredientAmount{IngredientID: id, Amount: amount(i + 1)}
	}
	_, err := v.ValidateComposition(context.Background(), entries, tags)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.lookups)
}

func TestIngredientAmountDecoding(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		body string
		want *int
	}{
		{name: "integer", body: `{"id":"` + id.String() + `","amount":7}`, want: amount(7)},
		{name: "fraction", body: `{"id":"` + id.String() + `","amount":1.5}`},
		{name: "string", body: `{"id":"` + id.String() + `","amount":"7"}`},
		{name: "null", body: `{"id":"` + id.String() + `","amount":null}`},
		{name: "missing", body: `{"id":"` + id.String() + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry IngredientAmount
			require.NoError(t, stdjson.Unmarshal([]byte(tt.body), &entry))
			assert.Equal(t, id, entry.IngredientID)
			assert.Equal(t, tt.want, entry.Amount)
		})
	}
}
