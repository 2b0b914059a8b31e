package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrRelationNotFound is returned when removing a relation that does not exist.
var ErrRelationNotFound = &apperror.AppError{Err: apperror.ErrNotFound, Message: "not found"}

// SubscribedAuthor is one followed author with a preview of their recipes.
type SubscribedAuthor struct {
	Author       models.User
	RecipesCount int64
	Recipes      []models.Recipe
}

// SubscriptionPage is one page of ListSubscriptions.
type SubscriptionPage struct {
	Authors []SubscribedAuthor
	Total   int64
}

// RelationService guards favorites, cart items and subscriptions against
// duplicates. All three kinds share one code path.
type RelationService struct {
	relations RelationStore
	recipes   RecipeStore
	users     UserStore
	log       zerolog.Logger
}

func NewRelationService(relations RelationStore, recipes RecipeStore, users UserStore) *RelationService {
	return &RelationService{
		relations: relations,
		recipes:   recipes,
		users:     users,
		log:       logging.Component("relation_service"),
	}
}

// AddRelation inserts the (user, target) membership row. An existing row is a
// conflict, not a silent success. Self-subscription is rejected before the
// duplicate check.
func (s *RelationService) AddRelation(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) error {
	err := s.addRelation(ctx, kind, userID, targetID)
	metrics.RecordRelationChange(kind.String(), "add", err)
	return err
}

func (s *RelationService) addRelation(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) error {
	if kind == models.RelationSubscription && userID == targetID {
		return ErrSelfSubscription
	}
	if err := s.requireTarget(ctx, kind, targetID); err != nil {
		return err
	}

	exists, err := s.relations.Exists(ctx, kind, userID, targetID)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", kind, err)
	}
	if exists {
		return ErrAlreadyExists
	}

	// The unique constraint closes the window between the check and the insert.
	if err := s.relations.Create(ctx, kind, userID, targetID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to add %s: %w", kind, err)
	}

	s.log.Debug().
		Str("kind", kind.String()).
		Str("user_id", userID.String()).
		Str("target_id", targetID.String()).
		Msg("relation added")
	return nil
}

// RemoveRelation deletes the membership row. Removing a row that does not
// exist is reported as not found.
func (s *RelationService) RemoveRelation(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) error {
	err := s.removeRelation(ctx, kind, userID, targetID)
	metrics.RecordRelationChange(kind.String(), "remove", err)
	return err
}

func (s *RelationService) removeRelation(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) error {
	if err := s.requireTarget(ctx, kind, targetID); err != nil {
		return err
	}

	deleted, err := s.relations.Delete(ctx, kind, userID, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", kind, err)
	}
	if deleted == 0 {
		return ErrRelationNotFound
	}

	s.log.Debug().
		Str("kind", kind.String()).
		Str("user_id", userID.String()).
		Str("target_id", targetID.String()).
		Msg("relation removed")
	return nil
}

// Flags reports which targets the user holds the relation for. Used to fill
// is_favorited, is_in_shopping_cart and is_subscribed.
func (s *RelationService) Flags(ctx context.Context, kind models.RelationKind, userID uuid.UUID, targets []uuid.UUID) (map[uuid.UUID]bool, error) {
	if userID == uuid.Nil {
		return map[uuid.UUID]bool{}, nil
	}
	return s.relations.Targets(ctx, kind, userID, targets)
}

// ListSubscriptions returns the authors the user follows, each with a recipe
// count and up to recipesLimit of their newest recipes. A negative
// recipesLimit returns all of them.
func (s *RelationService) ListSubscriptions(ctx context.Context, userID uuid.UUID, page, limit, recipesLimit int) (*SubscriptionPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	authors, total, err := s.relations.SubscribedAuthors(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	ids := make([]uuid.UUID, len(authors))
	for i, author := range authors {
		ids[i] = author.ID
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	result := &SubscriptionPage{Authors: make([]SubscribedAuthor, len(authors)), Total: total}
	for i, author := range authors {
		recipes, err := s.recentRecipes(ctx, author.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		result.Authors[i] = SubscribedAuthor{
			Author:       author,
			RecipesCount: counts[author.ID],
			Recipes:      recipes,
		}
	}
	return result, nil
}

// DescribeAuthor returns one author in the shape used by ListSubscriptions.
func (s *RelationService) DescribeAuthor(ctx context.Context, authorID uuid.UUID, recipesLimit int) (*SubscribedAuthor, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", authorID.String())
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	counts, err := s.recipes.CountByAuthors(ctx, []uuid.UUID{authorID})
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	recipes, err := s.recentRecipes(ctx, authorID, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &SubscribedAuthor{Author: *author, RecipesCount: counts[authorID], Recipes: recipes}, nil
}

func (s *RelationService) recentRecipes(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	if limit == 0 {
		return nil, nil
	}
	recipes, err := s.recipes.RecentByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes of %s: %w", authorID, err)
	}
	return recipes, nil
}

func (s *RelationService) requireTarget(ctx context.Context, kind models.RelationKind, targetID uuid.UUID) error {
	var (
		exists   bool
		err      error
		resource string
	)
	if kind == models.RelationSubscription {
		resource = "user"
		exists, err = s.users.Exists(ctx, targetID)
	} else {
		resource = "recipe"
		exists, err = s.recipes.Exists(ctx, targetID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", resource, err)
	}
	if !exists {
		return apperror.NotFound(resource, targetID.String())
	}
	return nil
}
