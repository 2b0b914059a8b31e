package api

import (
	"net/http"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/tags", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Tag](t, rr), 2)

	rr = env.do(t, http.MethodGet, "/api/tags/"+env.lunch.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "#E26C2D", decode[models.Tag](t, rr).Color)

	rr = env.do(t, http.MethodGet, "/api/tags/00000000-0000-0000-0000-000000000001", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/ingredients?name=s", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	names := []string{}
	for _, ing := range decode[[]models.Ingredient](t, rr) {
		names = append(names, ing.Name)
	}
	assert.Equal(t, []string{"Salt", "Sugar"}, names)

	rr = env.do(t, http.MethodGet, "/api/ingredients/"+env.flour.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Flour", decode[models.Ingredient](t, rr).Name)
}
