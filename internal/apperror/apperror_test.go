package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrapsToKind(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		kind error
	}{
		{"validation", Validation("ingredients", "duplicate ingredient"), ErrValidation},
		{"conflict", Conflict("already exists"), ErrConflict},
		{"not found", NotFound("recipe", "42"), ErrNotFound},
		{"forbidden", Forbidden("only the author may edit"), ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.kind))
			assert.Equal(t, tt.kind, Kind(wrapped))

			var appErr *AppError
			assert.True(t, errors.As(wrapped, &appErr))
			assert.Equal(t, tt.err.Message, appErr.Message)
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("recipe", "abc")
	assert.Equal(t, "recipe not found with id abc", err.Error())
}

func TestKindOfUntypedError(t *testing.T) {
	assert.Nil(t, Kind(errors.New("boom")))
}
