package api

import (
	"net/http"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	env := setupTestEnv(t)
	for _, name := range []string{"one", "two", "three", "four"} {
		testhelpers.CreateRecipe(t, env.db, env.author, name, map[*models.Ingredient]int{env.flour: 1}, env.lunch)
	}
	path := "/api/users/" + env.author.ID.String() + "/subscribe"

	rr := env.do(t, http.MethodPost, path+"?recipes_limit=2", env.other, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sub := decode[SubscriptionResponse](t, rr)
	assert.Equal(t, env.author.ID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(4), sub.RecipesCount)
	assert.Len(t, sub.Recipes, 2)

	rr = env.do(t, http.MethodPost, path, env.other, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/users/subscriptions", env.other, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[PageResponse[SubscriptionResponse]](t, rr)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 4, "no recipes_limit returns every recipe")

	rr = env.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=1", env.other, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[PageResponse[SubscriptionResponse]](t, rr).Results[0].Recipes, 1)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, env.other, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, env.other, nil).Code)
}

func TestRecipesLimitMustBeNumeric(t *testing.T) {
	env := setupTestEnv(t)
	path := "/api/users/" + env.author.ID.String() + "/subscribe"

	for _, limit := range []string{"abc", "-1", "2.5"} {
		rr := env.do(t, http.MethodPost, path+"?recipes_limit="+limit, env.other, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code, "recipes_limit=%s", limit)
		assert.Equal(t, "recipes_limit", decode[map[string]string](t, rr)["field"])

		rr = env.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit="+limit, env.other, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "recipes_limit=%s", limit)
	}

	// Rejected requests must not have subscribed.
	rr := env.do(t, http.MethodPost, path, env.other, nil)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestSubscribeToSelf(t *testing.T) {
	env := setupTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/users/"+env.author.ID.String()+"/subscribe", env.author, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "cannot subscribe to self", decode[map[string]string](t, rr)["error"])
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/users", nil, map[string]string{
		"email":      "new@example.com",
		"username":   "newcook",
		"first_name": "New",
		"last_name":  "Cook",
		"password":   "long-enough-password",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	user := decode[UserResponse](t, rr)
	assert.Equal(t, "newcook", user.Username)

	rr = env.do(t, http.MethodPost, "/api/auth/token/login", nil, LoginRequest{Email: "new@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/auth/token/login", nil, LoginRequest{Email: "new@example.com", Password: "long-enough-password"})
	require.Equal(t, http.StatusOK, rr.Code)
	token := decode[TokenResponse](t, rr).AuthToken

	claims, err := env.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}
