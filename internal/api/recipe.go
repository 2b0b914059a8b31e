package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

const shoppingListFilename = "shopping_list.txt"

type RecipeHandler struct {
	recipes       service.IRecipeService
	relations     service.IRelationService
	shopping      service.IShoppingListService
	images        storage.ImageStore
	tokens        middleware.TokenValidator
	createLimiter *middleware.RateLimiter
	modifyLimiter *middleware.RateLimiter
}

func NewRecipeHandler(deps Dependencies) *RecipeHandler {
	return &RecipeHandler{
		recipes:       deps.Recipes,
		relations:     deps.Relations,
		shopping:      deps.Shopping,
		images:        deps.Images,
		tokens:        deps.Tokens,
		createLimiter: deps.CreateLimiter,
		modifyLimiter: deps.ModifyLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.tokens)

	createChain := []gin.HandlerFunc{auth}
	if h.createLimiter != nil {
		createChain = append(createChain, h.createLimiter.RateLimitMiddleware("recipe_create"))
	}
	updateChain := []gin.HandlerFunc{auth}
	if h.modifyLimiter != nil {
		updateChain = append(updateChain, h.modifyLimiter.PerRecipeRateLimitMiddleware("recipe_modify"))
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuth(h.tokens), h.ListRecipes)
		recipes.POST("", append(createChain, h.CreateRecipe)...)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuth(h.tokens), h.GetRecipe)
		recipes.PATCH("/:id", append(updateChain, h.UpdateRecipe)...)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", auth, h.addRelation(models.RelationFavorite))
		recipes.DELETE("/:id/favorite", auth, h.removeRelation(models.RelationFavorite))
		recipes.POST("/:id/shopping_cart", auth, h.addRelation(models.RelationCart))
		recipes.DELETE("/:id/shopping_cart", auth, h.removeRelation(models.RelationCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	viewerID := viewer(c)

	filter := repository.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", service.DefaultPageSize),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, apperror.Validation("author", "invalid user id"))
			return
		}
		filter.AuthorID = &authorID
	}

	favorited, inCart := queryFlag(c, "is_favorited"), queryFlag(c, "is_in_shopping_cart")
	if (favorited || inCart) && viewerID == uuid.Nil {
		// Anonymous callers have no favorites or cart.
		c.JSON(http.StatusOK, PageResponse[RecipeResponse]{Results: []RecipeResponse{}})
		return
	}
	if favorited {
		filter.FavoritedBy = &viewerID
	}
	if inCart {
		filter.InCartOf = &viewerID
	}

	recipes, total, err := h.recipes.ListRecipes(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := h.present(ctx, viewerID, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PageResponse[RecipeResponse]{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	fields, err := recipeFields(req)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, fields, req.Ingredients, req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, recipe)
}

// UpdateRecipe replaces the recipe fields and its whole composition.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	var req RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	fields, err := recipeFields(req)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.ReplaceComposition(c.Request.Context(), id, userID, fields, req.Ingredients, req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart returns the consolidated shopping list as a text file.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	lines, err := h.shopping.BuildShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", shoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderShoppingList(lines)))
}

func (h *RecipeHandler) addRelation(kind models.RelationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "recipe")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := h.relations.AddRelation(ctx, kind, userID, id); err != nil {
			respondError(c, err)
			return
		}
		recipe, err := h.recipes.GetRecipe(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, h.shortRecipe(ctx, recipe))
	}
}

func (h *RecipeHandler) removeRelation(kind models.RelationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "recipe")
		if !ok {
			return
		}
		if err := h.relations.RemoveRelation(c.Request.Context(), kind, userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	results, err := h.present(c.Request.Context(), viewer(c), []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, results[0])
}

// present builds the read view of recipes, filling the per-viewer flags with
// one query per relation kind.
func (h *RecipeHandler) present(ctx context.Context, viewerID uuid.UUID, recipes []models.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	favorited, err := h.relations.Flags(ctx, models.RelationFavorite, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := h.relations.Flags(ctx, models.RelationCart, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := h.relations.Flags(ctx, models.RelationSubscription, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	results := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		ingredients := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
		for _, ri := range r.Ingredients {
			item := RecipeIngredientResponse{ID: ri.IngredientID, Amount: ri.Amount}
			if ri.Ingredient != nil {
				item.Name = ri.Ingredient.Name
				item.MeasurementUnit = ri.Ingredient.MeasurementUnit
			}
			ingredients = append(ingredients, item)
		}
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		results[i] = RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           userResponse(r.Author, subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            imageURL(ctx, h.images, r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.PubDate,
		}
	}
	return results, nil
}

func (h *RecipeHandler) shortRecipe(ctx context.Context, r *models.Recipe) ShortRecipeResponse {
	return shortRecipe(ctx, h.images, r)
}

func shortRecipe(ctx context.Context, images storage.ImageStore, r *models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       imageURL(ctx, images, r.Image),
		CookingTime: r.CookingTime,
	}
}

// imageURL resolves an object key to a public URL, falling back to the key.
func imageURL(ctx context.Context, images storage.ImageStore, key string) string {
	if key == "" || images == nil {
		return key
	}
	url, err := images.URL(ctx, key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to resolve image url")
		return key
	}
	return url
}

func recipeFields(req RecipeRequest) (service.RecipeFields, error) {
	fields := service.RecipeFields{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if req.Image != "" {
		img, err := storage.DecodeDataURI(req.Image)
		if err != nil {
			return fields, apperror.Validation("image", err.Error())
		}
		fields.Image = img
	}
	return fields, nil
}
