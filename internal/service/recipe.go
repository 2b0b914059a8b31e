package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Pagination defaults for recipe listings.
const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// RecipeService handles recipe operations
type RecipeService struct {
	recipes   RecipeStore
	validator *CompositionValidator
	images    storage.ImageStore
	log       zerolog.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(recipes RecipeStore, validator *CompositionValidator, images storage.ImageStore) *RecipeService {
	return &RecipeService{
		recipes:   recipes,
		validator: validator,
		images:    images,
		log:       logging.Component("recipe_service"),
	}
}

// ValidateComposition checks a proposed composition without writing anything.
func (s *RecipeService) ValidateComposition(ctx context.Context, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*Composition, error) {
	return s.validator.ValidateComposition(ctx, ingredients, tagIDs)
}

// CreateRecipe validates the recipe and inserts it with its composition as
// one unit. Nothing is visible to readers unless every insert succeeds.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, fields RecipeFields, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.createRecipe(ctx, authorID, fields, ingredients, tagIDs)
	metrics.RecordRecipeWrite("create", err)
	return recipe, err
}

func (s *RecipeService) createRecipe(ctx context.Context, authorID uuid.UUID, fields RecipeFields, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*models.Recipe, error) {
	if err := validateStruct(fields); err != nil {
		return nil, err
	}
	if fields.Image == nil {
		return nil, apperror.Validation("image", "this field is required")
	}

	comp, err := s.validator.ValidateComposition(ctx, ingredients, tagIDs)
	if err != nil {
		return nil, err
	}

	imageKey, err := s.images.Save(ctx, fields.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        fields.Name,
		Image:       imageKey,
		Text:        fields.Text,
		CookingTime: fields.CookingTime,
	}
	change := repository.CompositionChange{
		Recipe:      recipe,
		Ingredients: comp.Ingredients,
		TagIDs:      comp.TagIDs,
	}
	if err := s.recipes.Create(ctx, change); err != nil {
		s.discardImage(ctx, imageKey)
		return nil, err
	}

	s.log.Info().
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", authorID.String()).
		Int("ingredients", len(comp.Ingredients)).
		Int("tags", len(comp.TagIDs)).
		Msg("recipe created")

	return s.recipes.GetByID(ctx, recipe.ID)
}

// ReplaceComposition overwrites the scalar fields and the entire composition
// of a recipe. Ingredients and tags left out of the submission are removed.
// Only the author may replace a recipe.
func (s *RecipeService) ReplaceComposition(ctx context.Context, recipeID, requesterID uuid.UUID, fields RecipeFields, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.replaceComposition(ctx, recipeID, requesterID, fields, ingredients, tagIDs)
	metrics.RecordRecipeWrite("replace", err)
	return recipe, err
}

func (s *RecipeService) replaceComposition(ctx context.Context, recipeID, requesterID uuid.UUID, fields RecipeFields, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*models.Recipe, error) {
	current, err := s.ownedRecipe(ctx, recipeID, requesterID)
	if err != nil {
		return nil, err
	}

	if err := validateStruct(fields); err != nil {
		return nil, err
	}
	comp, err := s.validator.ValidateComposition(ctx, ingredients, tagIDs)
	if err != nil {
		return nil, err
	}

	imageKey := current.Image
	if fields.Image != nil {
		if imageKey, err = s.images.Save(ctx, fields.Image); err != nil {
			return nil, err
		}
	}

	change := repository.CompositionChange{
		Recipe: &models.Recipe{
			ID:          recipeID,
			Name:        fields.Name,
			Image:       imageKey,
			Text:        fields.Text,
			CookingTime: fields.CookingTime,
		},
		Ingredients: comp.Ingredients,
		TagIDs:      comp.TagIDs,
	}
	if err := s.recipes.Replace(ctx, change); err != nil {
		if imageKey != current.Image {
			s.discardImage(ctx, imageKey)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("recipe", recipeID.String())
		}
		return nil, err
	}
	if imageKey != current.Image {
		s.discardImage(ctx, current.Image)
	}

	s.log.Info().
		Str("recipe_id", recipeID.String()).
		Int("ingredients", len(comp.Ingredients)).
		Int("tags", len(comp.TagIDs)).
		Msg("recipe composition replaced")

	return s.recipes.GetByID(ctx, recipeID)
}

// GetRecipe returns a fully composed recipe.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("recipe", id.String())
	}
	return recipe, err
}

// ListRecipes returns one page of recipes, newest first, and the total count.
func (s *RecipeService) ListRecipes(ctx context.Context, filter repository.RecipeFilter) ([]models.Recipe, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	return s.recipes.List(ctx, filter)
}

// DeleteRecipe removes a recipe with its composition, favorites and cart rows.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id, requesterID uuid.UUID) error {
	err := s.deleteRecipe(ctx, id, requesterID)
	metrics.RecordRecipeWrite("delete", err)
	return err
}

func (s *RecipeService) deleteRecipe(ctx context.Context, id, requesterID uuid.UUID) error {
	current, err := s.ownedRecipe(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("recipe", id.String())
		}
		return err
	}
	s.discardImage(ctx, current.Image)

	s.log.Info().Str("recipe_id", id.String()).Msg("recipe deleted")
	return nil
}

// ownedRecipe loads the recipe row and checks that requesterID wrote it.
func (s *RecipeService) ownedRecipe(ctx context.Context, id, requesterID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRow(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("recipe", id.String())
		}
		return nil, err
	}
	if recipe.AuthorID != requesterID {
		return nil, ErrNotAuthor
	}
	return recipe, nil
}

func (s *RecipeService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to delete recipe image")
	}
}
