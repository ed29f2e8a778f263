package bilingual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay(t *testing.T) {
	assert.Equal(t, "牛肉 Beef", New("牛肉", "Beef").Display())
	assert.Equal(t, "牛肉", New("牛肉", " ").Display())
	assert.Equal(t, "Beef", New("", "Beef").Display())
	assert.Equal(t, "", Text{}.Display())
}

func TestPick(t *testing.T) {
	text := New("豬肉", "Pork")
	assert.Equal(t, "Pork", text.Pick(LangEN))
	assert.Equal(t, "豬肉", text.Pick(LangZH))
	assert.Equal(t, "豬肉", New("豬肉", "").Pick(LangEN))
	assert.Equal(t, "Pork", New("", "Pork").Pick(LangZH))
}

func TestPaired(t *testing.T) {
	assert.Equal(t, "和牛 (Wagyu)", New("和牛", "Wagyu").Paired())
	assert.True(t, New("a", "b").Complete())
	assert.False(t, New("a", "").Complete())
	assert.True(t, Text{EN: "  "}.IsZero())
}
