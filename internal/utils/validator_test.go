package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type boundedRequest struct {
	RateBp uint32 `json:"rate_bp" validate:"max=10000"`
	Years  uint32 `json:"years" validate:"min=1,max=20"`
}

func TestGetValidationErrorsUnwraps(t *testing.T) {
	err := ValidateStruct(&boundedRequest{RateBp: 10001, Years: 0})
	assert.Error(t, err)

	wrapped := fmt.Errorf("validation failed: %w", err)
	errs := GetValidationErrors(wrapped)
	assert.Len(t, errs, 2)
	assert.Equal(t, "rate_bp", errs[0].Field)
	assert.Equal(t, "max", errs[0].Tag)
	assert.Equal(t, "rate_bp must be at most 10000", errs[0].Message)
	assert.Equal(t, "min", errs[1].Tag)
	assert.Equal(t, "years must be at least 1", errs[1].Message)

	assert.NoError(t, ValidateStruct(&boundedRequest{RateBp: 10000, Years: 20}))
}

func TestGetValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, GetValidationErrors(nil))
	assert.Nil(t, GetValidationErrors(fmt.Errorf("boom")))
}
