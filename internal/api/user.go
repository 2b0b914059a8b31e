package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

// UserHandler serves subscriptions.
type UserHandler struct {
	relations service.IRelationService
	auth      service.IAuthService
	images    storage.ImageStore
	tokens    middleware.TokenValidator
}

func NewUserHandler(deps Dependencies) *UserHandler {
	return &UserHandler{
		relations: deps.Relations,
		auth:      deps.Auth,
		images:    deps.Images,
		tokens:    deps.Tokens,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.tokens)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("/subscriptions", auth, h.ListSubscriptions)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

// Register creates an account.
func (h *UserHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(user, false))
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	page, err := h.relations.ListSubscriptions(ctx, userID,
		queryInt(c, "page", 1),
		queryInt(c, "limit", service.DefaultPageSize),
		limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]SubscriptionResponse, len(page.Authors))
	for i := range page.Authors {
		results[i] = h.subscription(c, &page.Authors[i])
	}
	c.JSON(http.StatusOK, PageResponse[SubscriptionResponse]{Count: page.Total, Results: results})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c, "user")
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.relations.AddRelation(ctx, models.RelationSubscription, userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	author, err := h.relations.DescribeAuthor(ctx, authorID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.subscription(c, author))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := h.relations.RemoveRelation(c.Request.Context(), models.RelationSubscription, userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// subscription renders a followed author; the viewer follows them by definition.
func (h *UserHandler) subscription(c *gin.Context, a *service.SubscribedAuthor) SubscriptionResponse {
	recipes := make([]ShortRecipeResponse, len(a.Recipes))
	for i := range a.Recipes {
		recipes[i] = shortRecipe(c.Request.Context(), h.images, &a.Recipes[i])
	}
	return SubscriptionResponse{
		UserResponse: userResponse(&a.Author, true),
		Recipes:      recipes,
		RecipesCount: a.RecipesCount,
	}
}
