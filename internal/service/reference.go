package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ReferenceService serves tags and ingredients and runs bulk imports.
type ReferenceService struct {
	store ReferenceStore
	cache CacheInvalidator
	log   zerolog.Logger
}

// NewReferenceService creates the service. cache may be nil.
func NewReferenceService(store ReferenceStore, cache CacheInvalidator) *ReferenceService {
	return &ReferenceService{store: store, cache: cache, log: logging.Component("reference_data")}
}

func (s *ReferenceService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.store.ListTags(ctx)
}

func (s *ReferenceService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, err := s.store.GetTag(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("tag", id.String())
	}
	return tag, err
}

// ListIngredients searches by name. Names starting with the query come
// first, then names that merely contain it; each group is ordered by name.
func (s *ReferenceService) ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	ingredients, err := s.store.SearchIngredients(ctx, name)
	if err != nil || name == "" {
		return ingredients, err
	}

	prefix := strings.ToLower(name)
	ordered := make([]models.Ingredient, 0, len(ingredients))
	var contains []models.Ingredient
	for _, ing := range ingredients {
		if strings.HasPrefix(strings.ToLower(ing.Name), prefix) {
			ordered = append(ordered, ing)
		} else {
			contains = append(contains, ing)
		}
	}
	return append(ordered, contains...), nil
}

func (s *ReferenceService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	ingredient, err := s.store.GetIngredient(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("ingredient", id.String())
	}
	return ingredient, err
}

// ImportIngredients validates and inserts ingredients, skipping existing
// (name, unit) pairs, then invalidates the ingredient cache.
func (s *ReferenceService) ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	for i := range ingredients {
		ingredients[i].Name = strings.TrimSpace(ingredients[i].Name)
		ingredients[i].MeasurementUnit = strings.TrimSpace(ingredients[i].MeasurementUnit)
		if err := validateStruct(ingredients[i]); err != nil {
			return 0, fmt.Errorf("ingredient %d: %w", i, err)
		}
	}

	inserted, err := s.store.ImportIngredients(ctx, ingredients)
	if err != nil {
		return 0, fmt.Errorf("failed to import ingredients: %w", err)
	}
	s.invalidate(ctx)

	s.log.Info().Int("submitted", len(ingredients)).Int64("inserted", inserted).Msg("ingredients imported")
	return inserted, nil
}

// ImportTags validates tags, including the hex colour, and upserts them by slug.
func (s *ReferenceService) ImportTags(ctx context.Context, tags []models.Tag) (int64, error) {
	for i := range tags {
		if err := validateStruct(tags[i]); err != nil {
			return 0, fmt.Errorf("tag %d: %w", i, err)
		}
	}

	written, err := s.store.ImportTags(ctx, tags)
	if err != nil {
		return 0, fmt.Errorf("failed to import tags: %w", err)
	}

	s.log.Info().Int("submitted", len(tags)).Int64("written", written).Msg("tags imported")
	return written, nil
}

func (s *ReferenceService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate ingredient cache")
	}
}
