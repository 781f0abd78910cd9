package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email       string   `json:"email" validate:"required,email"`
	Nickname    string   `json:"nickname" validate:"omitempty,min=3"`
	Specialties []string `json:"specialties" validate:"min=1"`
	OpeningTime string   `json:"opening_time" validate:"omitempty,datetime=15:04"`
}

func TestToDetailsUsesJSONFieldNames(t *testing.T) {
	t.Parallel()

	v := New()
	err := v.Struct(sample{Email: "nope", Nickname: "ab", OpeningTime: "8am"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 3 characters long", details["nickname"])
	assert.Equal(t, "must have at least 1 items", details["specialties"])
	assert.Equal(t, "must match time format 15:04", details["opening_time"])
}

func TestToDetailsNilOnSuccess(t *testing.T) {
	t.Parallel()

	v := New()
	err := v.Struct(sample{Email: "ana@example.com", Specialties: []string{"derm"}})
	require.NoError(t, err)
	assert.Nil(t, ToDetails(err))
}

func TestToDetailsUnknownError(t *testing.T) {
	t.Parallel()

	details := ToDetails(assert.AnError)
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, details)
}
