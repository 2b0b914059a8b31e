package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Foodgram API is running",
	})
}

// respondError hands err to middleware.ErrorHandler, which writes the response.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
}

// bindJSON decodes the body. Ingredient amounts never fail here; see
// service.IngredientAmount.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		respondError(c, apperror.Validation(typeErr.Field, "invalid value type"))
		return false
	}
	respondError(c, apperror.Validation("", "invalid request body"))
	return false
}

// pathID parses a uuid path parameter. A malformed id cannot match any row,
// so it is reported as not found.
func pathID(c *gin.Context, resource string) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, apperror.NotFound(resource, raw))
		return uuid.Nil, false
	}
	return id, true
}

// viewer returns the authenticated caller or uuid.Nil for anonymous reads.
func viewer(c *gin.Context) uuid.UUID {
	id, _ := middleware.UserID(c)
	return id
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return id, ok
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// recipesLimit reads recipes_limit. Absent means no limit (-1).
func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return -1, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || strings.HasPrefix(raw, "+") {
		respondError(c, apperror.Validation("recipes_limit", "recipes_limit accepts only numeric values"))
		return 0, false
	}
	return v, true
}

func queryFlag(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
