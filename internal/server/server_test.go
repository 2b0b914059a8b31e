package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/auth"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryImageStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	recipeRepo := repository.NewRecipeRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	images := storage.NewMemoryImageStore("http://localhost:8080/media")
	tokens := auth.NewTokenService("test-secret", time.Hour)

	cfg := &config.Config{
		ServerHost:  "localhost",
		ServerPort:  "8080",
		CORSOrigins: []string{"http://localhost:3000"},
	}
	srv := New(cfg, db, api.Dependencies{
		Recipes:   service.NewRecipeService(recipeRepo, service.NewCompositionValidator(referenceRepo, referenceRepo), images),
		Relations: service.NewRelationService(repository.NewRelationRepository(db), recipeRepo, userRepo),
		Shopping:  service.NewShoppingListService(repository.NewShoppingRepository(db)),
		Reference: service.NewReferenceService(referenceRepo, nil),
		Auth:      service.NewAuthService(userRepo, tokens),
		Images:    images,
		Tokens:    tokens,
	})
	return srv, images
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestNew(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusOK, get(srv, "/health").Code)
	assert.Equal(t, http.StatusOK, get(srv, "/ready").Code)

	metrics := get(srv, "/metrics")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "foodgram_api_requests_total")
}

func TestServesMemoryImages(t *testing.T) {
	srv, images := newTestServer(t)

	key, err := images.Save(context.Background(), &storage.Image{Data: []byte("png-bytes"), ContentType: "image/png", Extension: "png"})
	require.NoError(t, err)

	w := get(srv, "/media/"+key)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	assert.Equal(t, http.StatusNotFound, get(srv, "/media/recipes/images/missing.png").Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/recipes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
