package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

// Dependencies are the collaborators the HTTP handlers delegate to.
// The limiters are optional.
type Dependencies struct {
	Recipes   service.IRecipeService
	Relations service.IRelationService
	Shopping  service.IShoppingListService
	Reference service.IReferenceService
	Auth      service.IAuthService
	Images    storage.ImageStore
	Tokens    middleware.TokenValidator

	CreateLimiter *middleware.RateLimiter
	ModifyLimiter *middleware.RateLimiter
}

// RegisterRoutes mounts every handler under /api.
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck)

	group := router.Group("/api")
	NewAuthHandler(deps.Auth).RegisterRoutes(group)
	NewRecipeHandler(deps).RegisterRoutes(group)
	NewUserHandler(deps).RegisterRoutes(group)
	NewReferenceHandler(deps.Reference).RegisterRoutes(group)
}
