package format

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTWD(t *testing.T) {
	d := func(s string) *decimal.Decimal {
		v := decimal.RequireFromString(s)
		return &v
	}
	assert.Equal(t, "NT$ 0.00", TWD(nil))
	assert.Equal(t, "NT$ 1,234.56", TWD(d("1234.56")))
	assert.Equal(t, "NT$ 880.00", TWD(d("880")))
	assert.Equal(t, "NT$ 1,000,000.50", TWD(d("1000000.5")))
	assert.Equal(t, "NT$ 0.12", TWD(d("0.125")))
}

func TestWeight(t *testing.T) {
	w := func(n int) *int { return &n }
	assert.Equal(t, "", Weight(nil))
	assert.Equal(t, "", Weight(w(0)))
	assert.Equal(t, "500 g", Weight(w(500)))
	assert.Equal(t, "1 kg", Weight(w(1000)))
	assert.Equal(t, "1.5 kg", Weight(w(1500)))
}

func TestResponseTime(t *testing.T) {
	dur := func(d time.Duration) *time.Duration { return &d }
	assert.Equal(t, "-", ResponseTime(nil))
	assert.Equal(t, "5m", ResponseTime(dur(5*time.Minute)))
	assert.Equal(t, "2h 3m", ResponseTime(dur(2*time.Hour+3*time.Minute)))
	assert.Equal(t, "1d 0h 30m", ResponseTime(dur(24*time.Hour+30*time.Minute)))
}

func TestPreview(t *testing.T) {
	short := "你好，我想詢問牛肉"
	assert.Equal(t, short, Preview(short, 100))

	long := strings.Repeat("肉", 120)
	got := Preview(long, 100)
	assert.Equal(t, strings.Repeat("肉", 100)+"...", got)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "3 product(s)", Plural(3, "product"))
}
