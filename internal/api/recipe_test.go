package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) pancakes() map[string]interface{} {
	return map[string]interface{}{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"image":        testPNG,
		"ingredients": []map[string]interface{}{
			{"id": e.flour.ID, "amount": 200},
			{"id": e.salt.ID, "amount": 5},
		},
		"tags": []string{e.lunch.ID.String()},
	}
}

func TestCreateRecipe(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/recipes", env.author, env.pancakes())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := decode[RecipeResponse](t, rr)
	assert.Equal(t, "Pancakes", resp.Name)
	assert.Equal(t, env.author.ID, resp.Author.ID)
	assert.False(t, resp.IsFavorited)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "lunch", resp.Tags[0].Slug)
	require.Len(t, resp.Ingredients, 2)
	assert.True(t, strings.HasPrefix(resp.Image, "http://media.test/recipes/images/"))

	amounts := map[string]int{}
	for _, ing := range resp.Ingredients {
		amounts[ing.Name] = ing.Amount
		assert.Equal(t, "g", ing.MeasurementUnit)
	}
	assert.Equal(t, map[string]int{"Flour": 200, "Salt": 5}, amounts)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	env := setupTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/recipes", nil, env.pancakes())
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateRecipeRejections(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name      string
		mutate    func(body map[string]interface{})
		wantError string
	}{
		{
			name: "duplicate ingredient",
			mutate: func(body map[string]interface{}) {
				body["ingredients"] = []map[string]interface{}{
					{"id": env.flour.ID, "amount": 1},
					{"id": env.flour.ID, "amount": 2},
				}
			},
			wantError: "duplicate ingredient",
		},
		{
			name: "fractional amount",
			mutate: func(body map[string]interface{}) {
				body["ingredients"] = []map[string]interface{}{{"id": env.flour.ID, "amount": 1.5}}
			},
			wantError: "invalid amount",
		},
		{
			name: "fractional amount without tags",
			mutate: func(body map[string]interface{}) {
				body["ingredients"] = []map[string]interface{}{{"id": env.flour.ID, "amount": 1.5}}
				body["tags"] = []string{}
			},
			wantError: "at least one tag required",
		},
		{
			name: "non-numeric amount",
			mutate: func(body map[string]interface{}) {
				body["ingredients"] = []map[string]interface{}{{"id": env.flour.ID, "amount": "lots"}}
			},
			wantError: "invalid amount",
		},
		{
			name:      "no tags",
			mutate:    func(body map[string]interface{}) { body["tags"] = []string{} },
			wantError: "at least one tag required",
		},
		{
			name:      "missing image",
			mutate:    func(body map[string]interface{}) { delete(body, "image") },
			wantError: "this field is required",
		},
		{
			name:      "bad image",
			mutate:    func(body map[string]interface{}) { body["image"] = "http://example.com/x.png" },
			wantError: "image must be a base64 data URI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := env.pancakes()
			tt.mutate(body)
			rr := env.do(t, http.MethodPost, "/api/recipes", env.author, body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantError, decode[map[string]string](t, rr)["error"])
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRecipe(t *testing.T) {
	env := setupTestEnv(t)
	recipe := testhelpers.CreateRecipe(t, env.db, env.author, "bread", map[*models.Ingredient]int{env.flour: 500, env.salt: 10}, env.lunch)
	path := "/api/recipes/" + recipe.ID.String()

	body := map[string]interface{}{
		"name":         "Sweet bread",
		"text":         "Bake.",
		"cooking_time": 60,
		"ingredients":  []map[string]interface{}{{"id": env.sugar.ID, "amount": 50}},
		"tags":         []string{env.dinner.ID.String()},
	}

	rr := env.do(t, http.MethodPatch, path, env.other, body)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodPatch, path, env.author, body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[RecipeResponse](t, rr)
	assert.Equal(t, "Sweet bread", resp.Name)
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, "Sugar", resp.Ingredients[0].Name)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "dinner", resp.Tags[0].Slug)
	assert.Equal(t, "http://media.test/"+recipe.Image, resp.Image, "omitted image keeps the current one")

	rr = env.do(t, http.MethodPatch, "/api/recipes/not-a-uuid", env.author, body)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteRecipe(t *testing.T) {
	env := setupTestEnv(t)
	recipe := testhelpers.CreateRecipe(t, env.db, env.author, "bread", map[*models.Ingredient]int{env.flour: 500}, env.lunch)
	path := "/api/recipes/" + recipe.ID.String()

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, path, env.other, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, env.author, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil, nil).Code)
}

func TestFavoriteAndCart(t *testing.T) {
	env := setupTestEnv(t)
	recipe := testhelpers.CreateRecipe(t, env.db, env.author, "bread", map[*models.Ingredient]int{env.flour: 500}, env.lunch)

	for _, relation := range []string{"favorite", "shopping_cart"} {
		t.Run(relation, func(t *testing.T) {
			path := fmt.Sprintf("/api/recipes/%s/%s", recipe.ID, relation)

			rr := env.do(t, http.MethodPost, path, env.other, nil)
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
			short := decode[ShortRecipeResponse](t, rr)
			assert.Equal(t, recipe.ID, short.ID)

			rr = env.do(t, http.MethodPost, path, env.other, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "already exists", decode[map[string]string](t, rr)["error"])

			assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, env.other, nil).Code)
			assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, env.other, nil).Code)
		})
	}

	missing := "/api/recipes/00000000-0000-0000-0000-000000000001/favorite"
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, missing, env.other, nil).Code)
}

func TestListRecipesFlagsAndFilters(t *testing.T) {
	env := setupTestEnv(t)
	bread := testhelpers.CreateRecipe(t, env.db, env.author, "bread", map[*models.Ingredient]int{env.flour: 500}, env.lunch)
	testhelpers.CreateRecipe(t, env.db, env.author, "stew", map[*models.Ingredient]int{env.salt: 5}, env.dinner)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/recipes/"+bread.ID.String()+"/favorite", env.other, nil).Code)

	rr := env.do(t, http.MethodGet, "/api/recipes", env.other, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[PageResponse[RecipeResponse]](t, rr)
	assert.Equal(t, int64(2), page.Count)
	for _, r := range page.Results {
		assert.Equal(t, r.ID == bread.ID, r.IsFavorited, r.Name)
	}

	rr = env.do(t, http.MethodGet, "/api/recipes?is_favorited=1", env.other, nil)
	page = decode[PageResponse[RecipeResponse]](t, rr)
	require.Len(t, page.Results, 1)
	assert.Equal(t, bread.ID, page.Results[0].ID)

	rr = env.do(t, http.MethodGet, "/api/recipes?tags=dinner", nil, nil)
	page = decode[PageResponse[RecipeResponse]](t, rr)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "stew", page.Results[0].Name)

	rr = env.do(t, http.MethodGet, "/api/recipes?is_in_shopping_cart=1", nil, nil)
	page = decode[PageResponse[RecipeResponse]](t, rr)
	assert.Empty(t, page.Results)
}

func TestDownloadShoppingCart(t *testing.T) {
	env := setupTestEnv(t)
	first := testhelpers.CreateRecipe(t, env.db, env.author, "first", map[*models.Ingredient]int{env.flour: 200, env.salt: 5})
	second := testhelpers.CreateRecipe(t, env.db, env.author, "second", map[*models.Ingredient]int{env.flour: 100, env.sugar: 50})

	for _, r := range []*models.Recipe{first, second} {
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/recipes/"+r.ID.String()+"/shopping_cart", env.other, nil).Code)
	}

	rr := env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", env.other, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "shopping_list.txt")
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "Flour (g) - 300\nSalt (g) - 5\nSugar (g) - 50", rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", env.author, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
}
