package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse(" 1,250.505 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1250.51").Equal(d))

	_, err = Parse("")
	assert.Error(t, err)

	_, err = Parse("12abc")
	assert.Error(t, err)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, int64(13), RoundHalfUp(decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(12), RoundHalfUp(decimal.RequireFromString("12.49")))
	assert.Equal(t, int64(-12), RoundHalfUp(decimal.RequireFromString("-12.5")))
	assert.Equal(t, int64(-13), RoundHalfUp(decimal.RequireFromString("-12.51")))
}

func TestPercent(t *testing.T) {
	pct, ok := Percent(decimal.NewFromInt(1), decimal.NewFromInt(3))
	assert.True(t, ok)
	assert.Equal(t, int64(33), pct)

	_, ok = Percent(decimal.NewFromInt(10), decimal.Zero)
	assert.False(t, ok)

	_, ok = Percent(decimal.NewFromInt(10), decimal.NewFromInt(-5))
	assert.False(t, ok)
}

func TestHelpers(t *testing.T) {
	assert.True(t, ClampZero(decimal.NewFromInt(-4)).IsZero())
	assert.True(t, Sum(decimal.NewFromInt(1), decimal.NewFromInt(2)).Equal(decimal.NewFromInt(3)))
	assert.True(t, OrZero(nil).IsZero())
	assert.Nil(t, FromNull(ToNull(nil)))
	assert.Equal(t, "10.50", Format(decimal.RequireFromString("10.5")))
	assert.Equal(t, "N/A", FormatOptional(nil))
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	out, err := json.Marshal(map[string]decimal.Decimal{"amount": decimal.RequireFromString("99.95")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":99.95}`, string(out))
}
