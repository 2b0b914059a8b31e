package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/rs/zerolog"
)

// ShoppingLine is one consolidated ingredient of a shopping list.
type ShoppingLine struct {
	Name  string `json:"name"`
	Unit  string `json:"measurement_unit"`
	Total int64  `json:"amount"`
}

// String renders the line as "<name> (<unit>) - <total>".
func (l ShoppingLine) String() string {
	return l.Name + " (" + l.Unit + ") - " + strconv.FormatInt(l.Total, 10)
}

// ShoppingListService aggregates the ingredients of every recipe in a cart.
type ShoppingListService struct {
	store ShoppingStore
	log   zerolog.Logger
}

func NewShoppingListService(store ShoppingStore) *ShoppingListService {
	return &ShoppingListService{store: store, log: logging.Component("shopping_list")}
}

// BuildShoppingList returns the user's cart ingredients grouped by (name,
// unit) with summed amounts, ordered by name. An empty cart yields an empty list.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingLine, error) {
	start := time.Now()

	rows, err := s.store.CartIngredients(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart ingredients: %w", err)
	}
	lines := Aggregate(rows)

	elapsed := time.Since(start)
	metrics.RecordShoppingList(len(lines), elapsed)
	s.log.Debug().
		Str("user_id", userID.String()).
		Int("rows", len(rows)).
		Int("lines", len(lines)).
		Dur("elapsed", elapsed).
		Msg("shopping list built")

	return lines, nil
}

type ingredientKey struct {
	name string
	unit string
}

// Aggregate groups rows by (name, unit) in one pass, summing amounts, then
// sorts once by name and unit.
func Aggregate(rows []repository.ShoppingRow) []ShoppingLine {
	index := make(map[ingredientKey]int, len(rows))
	lines := make([]ShoppingLine, 0, len(rows))
	for _, row := range rows {
		key := ingredientKey{name: row.Name, unit: row.Unit}
		if i, ok := index[key]; ok {
			lines[i].Total += row.Amount
			continue
		}
		index[key] = len(lines)
		lines = append(lines, ShoppingLine{Name: row.Name, Unit: row.Unit, Total: row.Amount})
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].Unit < lines[j].Unit
	})
	return lines
}

// RenderShoppingList joins the lines with newlines, in list order.
func RenderShoppingList(lines []ShoppingLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line.String()
	}
	return strings.Join(out, "\n")
}
