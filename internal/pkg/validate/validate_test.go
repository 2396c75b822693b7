package validate

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asrama/internal/domain"
)

func TestStruct_Valid(t *testing.T) {
	input := domain.CreateMaintenanceInput{Title: "Leaking tap", Description: "Bathroom sink"}
	assert.NoError(t, Struct(input))
}

func TestStruct_ReportsJSONFieldName(t *testing.T) {
	err := Struct(domain.CreateMaintenanceInput{Title: "ab", Description: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "title", vErr.Field)
	assert.Equal(t, "must be at least 3", vErr.Reason)
}

func TestStruct_Oneof(t *testing.T) {
	err := Struct(domain.UpdateStatusInput{Status: "dropped"})

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "status", vErr.Field)
}

func TestStruct_BulkDive(t *testing.T) {
	err := Struct(domain.BulkAssignInput{RoomID: uuid.New()})

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "resident_ids", vErr.Field)
	assert.Equal(t, "is required", vErr.Reason)
}
