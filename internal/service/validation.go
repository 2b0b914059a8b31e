package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// IngredientAmount is one proposed (ingredient, amount) entry. A nil Amount
// means the entry carried no usable amount.
type IngredientAmount struct {
	IngredientID uuid.UUID `json:"id"`
	Amount       *int      `json:"amount"`
}

// UnmarshalJSON leaves Amount nil when the amount is missing, null or not an
// integer, so the bad amount is reported by the amount rule in rule order
// rather than by the decoder.
func (a *IngredientAmount) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     uuid.UUID       `json:"id"`
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.IngredientID = raw.ID
	a.Amount = nil
	if len(raw.Amount) == 0 || bytes.Equal(raw.Amount, []byte("null")) {
		return nil
	}
	var amount int
	if err := json.Unmarshal(raw.Amount, &amount); err == nil {
		a.Amount = &amount
	}
	return nil
}

// Composition is a validated composition, ready to be written.
type Composition struct {
	Ingredients []models.RecipeIngredient
	TagIDs      []uuid.UUID
}

// CompositionValidator checks a proposed composition against the business
// rules. It never writes.
type CompositionValidator struct {
	ingredients IngredientLookup
	tags        TagLookup
}

func NewCompositionValidator(ingredients IngredientLookup, tags TagLookup) *CompositionValidator {
	return &CompositionValidator{ingredients: ingredients, tags: tags}
}

// ValidateComposition applies the rules in order and returns the first
// failure. Each rule is checked over the whole list before the next one
// runs. Repeated tag ids collapse into one.
func (v *CompositionValidator) ValidateComposition(ctx context.Context, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*Composition, error) {
	comp, err := v.validate(ctx, ingredients, tagIDs)
	if err != nil {
		if reason := reasonLabel(err); reason != "fields" {
			metrics.CompositionRejections.WithLabelValues(reason).Inc()
		}
		return nil, err
	}
	return comp, nil
}

func (v *CompositionValidator) validate(ctx context.Context, ingredients []IngredientAmount, tagIDs []uuid.UUID) (*Composition, error) {
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}
	if len(tagIDs) == 0 {
		return nil, ErrNoTags
	}

	distinct := make([]uuid.UUID, 0, len(ingredients))
	seen := make(map[uuid.UUID]bool, len(ingredients))
	duplicate := false
	for _, entry := range ingredients {
		if seen[entry.IngredientID] {
			duplicate = true
			continue
		}
		seen[entry.IngredientID] = true
		distinct = append(distinct, entry.IngredientID)
	}

	found, err := v.ingredients.IngredientsByIDs(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ingredients: %w", err)
	}
	existing := make(map[uuid.UUID]bool, len(found))
	for _, ing := range found {
		existing[ing.ID] = true
	}
	for _, id := range distinct {
		if !existing[id] {
			return nil, ErrUnknownIngredient
		}
	}

	if duplicate {
		return nil, ErrDuplicateIngredient
	}

	rows := make([]models.RecipeIngredient, len(ingredients))
	for i, entry := range ingredients {
		if entry.Amount == nil || *entry.Amount < models.MinAmount || *entry.Amount > models.MaxAmount {
			return nil, ErrInvalidAmount
		}
		rows[i] = models.RecipeIngredient{IngredientID: entry.IngredientID, Amount: *entry.Amount}
	}

	tags := make([]uuid.UUID, 0, len(tagIDs))
	seenTags := make(map[uuid.UUID]bool, len(tagIDs))
	for _, id := range tagIDs {
		if !seenTags[id] {
			seenTags[id] = true
			tags = append(tags, id)
		}
	}
	count, err := v.tags.CountTags(ctx, tags)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	if count != int64(len(tags)) {
		return nil, ErrUnknownTag
	}

	return &Composition{Ingredients: rows, TagIDs: tags}, nil
}
