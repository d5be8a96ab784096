package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Categorize(nil))
	})

	t.Run("wrapped categorized error is found", func(t *testing.T) {
		err := fmt.Errorf("loading wallet: %w", NewNotFoundError("wallet", int64(7)))
		cat := Categorize(err)
		assert.Equal(t, CategoryNotFound, cat.Category)
		assert.Equal(t, http.StatusNotFound, cat.StatusCode)
		assert.Equal(t, "wallet not found: 7", cat.Message)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		cat := Categorize(fmt.Errorf("boom"))
		assert.Equal(t, CodeInternal, cat.Code)
		assert.Equal(t, http.StatusInternalServerError, cat.StatusCode)
	})
}

func TestPredicates(t *testing.T) {
	notFound := NewNotFoundError("token", 3)
	invalid := NewInvalidInputError("wallet_ids", "At least one wallet ID is required")

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(invalid))
	assert.True(t, IsInvalidInput(fmt.Errorf("ctx: %w", invalid)))
	assert.True(t, IsUserError(invalid))
	assert.False(t, IsUserError(NewDatabaseError("query", fmt.Errorf("conn reset"))))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatusCode(invalid))
}

func TestCategorizedError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := NewPartialDataError("price history", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: timeout")
	assert.Equal(t, CodePartialData, err.ToServiceError().Code)
}
