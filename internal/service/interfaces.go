package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
)

// IngredientLookup resolves ingredient ids. Implemented by the reference
// repository and by the Redis ingredient cache in front of it.
type IngredientLookup interface {
	IngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error)
}

// TagLookup counts how many of the ids exist.
type TagLookup interface {
	CountTags(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// RecipeStore persists recipes and applies composition changes atomically.
type RecipeStore interface {
	Create(ctx context.Context, change repository.CompositionChange) error
	Replace(ctx context.Context, change repository.CompositionChange) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	GetRow(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, filter repository.RecipeFilter) ([]models.Recipe, int64, error)
	RecentByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RelationStore stores membership rows keyed by relation kind.
type RelationStore interface {
	Exists(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) (bool, error)
	Create(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) error
	Delete(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) (int64, error)
	Targets(ctx context.Context, kind models.RelationKind, userID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error)
	SubscribedAuthors(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.User, int64, error)
}

// UserStore is the subset of user storage the core needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ShoppingStore yields the raw cart ingredient rows of a user.
type ShoppingStore interface {
	CartIngredients(ctx context.Context, userID uuid.UUID) ([]repository.ShoppingRow, error)
}

// ReferenceStore reads and imports ingredients and tags.
type ReferenceStore interface {
	IngredientLookup
	TagLookup
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	SearchIngredients(ctx context.Context, query string) ([]models.Ingredient, error)
	ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ImportTags(ctx context.Context, tags []models.Tag) (int64, error)
}

// CacheInvalidator drops cached reference data after an import.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ValidateComposition(ctx context.Context, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*Composition, error)
	CreateRecipe(ctx context.Context, authorID uuid.UUID, fields RecipeFields, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*models.Recipe, error)
	ReplaceComposition(ctx context.Context, recipeID, requesterID uuid.UUID, fields RecipeFields, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter repository.RecipeFilter) ([]models.Recipe, int64, error)
	DeleteRecipe(ctx context.Context, id, requesterID uuid.UUID) error
}

// IRelationService defines the interface for favorites, cart and subscriptions
type IRelationService interface {
	AddRelation(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) error
	RemoveRelation(ctx context.Context, kind models.RelationKind, userID, targetID uuid.UUID) error
	Flags(ctx context.Context, kind models.RelationKind, userID uuid.UUID, targets []uuid.UUID) (map[uuid.UUID]bool, error)
	ListSubscriptions(ctx context.Context, userID uuid.UUID, page, limit, recipesLimit int) (*SubscriptionPage, error)
	DescribeAuthor(ctx context.Context, authorID uuid.UUID, recipesLimit int) (*SubscribedAuthor, error)
}

// IShoppingListService defines the interface for shopping list generation
type IShoppingListService interface {
	BuildShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingLine, error)
}

// IAuthService defines the interface for signup and token login
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// IReferenceService defines the interface for tag and ingredient reference data
type IReferenceService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error)
	ImportTags(ctx context.Context, tags []models.Tag) (int64, error)
}
