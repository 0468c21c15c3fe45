package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	FullName string `validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Guests   int    `validate:"gte=1,lte=10"`
	Status   string `validate:"omitempty,oneof=new closed"`
}

func TestValidateCollectsFieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), sample{Email: "nope", Guests: 0, Status: "open"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, map[string]string{
		"full_name": "required",
		"email":     "email",
		"guests":    "gte",
		"status":    "oneof",
	}, fields)
	assert.Contains(t, err.Error(), "full_name is required")
	assert.Contains(t, err.Error(), "status must be one of: new, closed")
}

func TestValidatePassesValidAndNonStructMessages(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(context.Background(), &sample{FullName: "Ann", Email: "ann@example.com", Guests: 2}))
	assert.NoError(t, v.Validate(context.Background(), "plain"))
	assert.NoError(t, v.Validate(context.Background(), nil))
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "check_in", toSnake("CheckIn"))
	assert.Equal(t, "id", toSnake("ID"))
	assert.Equal(t, "nightly_min", toSnake("NightlyMin"))
}
