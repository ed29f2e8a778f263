package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug  string `json:"slug" validate:"required,max=10,categoryslug"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,phonechars"`
}

func TestStructCollectsFieldErrors(t *testing.T) {
	err := Struct(sample{Slug: "Beef Cuts", Phone: "09x"})
	vErr, ok := As(err)
	require.True(t, ok)

	fields := vErr.ByField()
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "email")
	assert.Equal(t, []string{"請輸入有效的電話號碼 Please enter a valid phone number"}, fields["phone"])
	assert.Equal(t, []string{"email", "phone", "slug"}, vErr.SortedFields())
}

func TestStructAcceptsValid(t *testing.T) {
	require.NoError(t, Struct(sample{Slug: "beef-1", Email: "a@b.tw", Phone: "(02) 2345-6789"}))
}

func TestSlugRules(t *testing.T) {
	assert.True(t, ValidCategorySlug("premium-beef"))
	assert.False(t, ValidCategorySlug("Premium_Beef"))
	assert.True(t, ValidProductSlug("Wagyu_A5-ribeye"))
	assert.False(t, ValidProductSlug("wagyu a5"))
}

func TestErrNilWhenEmpty(t *testing.T) {
	var e Errors
	assert.NoError(t, e.Err())
	e.Add("name", "required", "x")
	assert.Error(t, e.Err())
	assert.True(t, e.Has("name"))
}
