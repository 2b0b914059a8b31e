package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{apperror.Validation("ingredients", "invalid amount"), "invalid"},
		{fmt.Errorf("wrapped: %w", apperror.Conflict("already exists")), "conflict"},
		{apperror.NotFound("recipe", "1"), "not_found"},
		{apperror.Forbidden("nope"), "forbidden"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result(tt.err))
	}
}

func TestRecordRelationChange(t *testing.T) {
	before := testutil.ToFloat64(RelationChanges.WithLabelValues("favorite", "add", "conflict"))
	RecordRelationChange("favorite", "add", apperror.Conflict("already exists"))
	after := testutil.ToFloat64(RelationChanges.WithLabelValues("favorite", "add", "conflict"))
	assert.Equal(t, before+1, after)
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))
	RecordAPIRequest("GET", "/api/tags/", 200, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tags/", "200")))
}
