package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockRecipeStore is a mock implementation of the recipe store
type MockRecipeStore struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockRecipeStore) Create(ctx context.Context, change repository.CompositionChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

// Replace mocks the Replace method
func (m *MockRecipeStore) Replace(ctx context.Context, change repository.CompositionChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

// GetByID mocks the GetByID method
func (m *MockRecipeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// GetRow mocks the GetRow method
func (m *MockRecipeStore) GetRow(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// Exists mocks the Exists method
func (m *MockRecipeStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// List mocks the List method
func (m *MockRecipeStore) List(ctx context.Context, filter repository.RecipeFilter) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(int64), args.Error(2)
}

// RecentByAuthor mocks the RecentByAuthor method
func (m *MockRecipeStore) RecentByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	args := m.Called(ctx, authorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

// CountByAuthors mocks the CountByAuthors method
func (m *MockRecipeStore) CountByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, authorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockRecipeStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
