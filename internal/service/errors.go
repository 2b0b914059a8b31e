package service

import "github.com/pageza/foodgram/backend/internal/apperror"

// Rejection reasons. Match the kind with errors.Is(err, apperror.ErrValidation)
// or the exact reason with errors.Is(err, ErrDuplicateIngredient).
var (
	ErrNoIngredients       = apperror.Validation("ingredients", "at least one ingredient required")
	ErrNoTags              = apperror.Validation("tags", "at least one tag required")
	ErrUnknownIngredient   = apperror.Validation("ingredients", "unknown ingredient")
	ErrDuplicateIngredient = apperror.Validation("ingredients", "duplicate ingredient")
	ErrInvalidAmount       = apperror.Validation("ingredients", "invalid amount")
	ErrUnknownTag          = apperror.Validation("tags", "unknown tag")

	ErrAlreadyExists    = apperror.Conflict("already exists")
	ErrSelfSubscription = apperror.Conflict("cannot subscribe to self")

	ErrNotAuthor = apperror.Forbidden("only the author may modify this recipe")
)

// reasonLabel names a rejection for metrics.
func reasonLabel(err error) string {
	switch err {
	case ErrNoIngredients:
		return "no_ingredients"
	case ErrNoTags:
		return "no_tags"
	case ErrUnknownIngredient:
		return "unknown_ingredient"
	case ErrDuplicateIngredient:
		return "duplicate_ingredient"
	case ErrInvalidAmount:
		return "invalid_amount"
	case ErrUnknownTag:
		return "unknown_tag"
	default:
		return "fields"
	}
}
