package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvertIdentity(t *testing.T) {
	c := NewCurrencyConverter(TreatUnknownAsReference)
	x := dec("1234.5678")
	for _, code := range append(c.SupportedCurrencies(), "XYZ") {
		assert.True(t, c.Convert(x, code, code).Equal(x), code)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	c := NewCurrencyConverter(TreatUnknownAsReference)
	x := dec("123.45")
	tolerance := dec("0.000000001")
	for _, a := range c.SupportedCurrencies() {
		for _, b := range c.SupportedCurrencies() {
			back := c.Convert(c.Convert(x, a, b), b, a)
			assert.True(t, back.Sub(x).Abs().LessThan(tolerance), "%s->%s->%s gave %s", a, b, a, back)
		}
	}
}

func TestConvertUsesTable(t *testing.T) {
	c := NewCurrencyConverter(TreatUnknownAsReference)
	assert.True(t, c.Convert(dec("100"), "EUR", "USD").Equal(dec("108")))
	assert.True(t, c.Convert(dec("100"), "eur", " usd").Equal(dec("108")))
	assert.True(t, c.Convert(dec("127"), "USD", "GBP").Equal(dec("100")))
}

func TestConvertUnknownCurrencyPolicy(t *testing.T) {
	lenient := NewCurrencyConverter(TreatUnknownAsReference)
	assert.True(t, lenient.Convert(dec("10"), "XYZ", "USD").Equal(dec("10")))
	got, err := lenient.ConvertStrict(dec("10"), "XYZ", "EUR")
	require.NoError(t, err)
	assert.True(t, got.Equal(c10Over108()), got.String())

	strict := NewCurrencyConverter(RejectUnknown)
	_, err = strict.ConvertStrict(dec("10"), "USD", "XYZ")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
	got, err = strict.ConvertStrict(dec("100"), "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("108")))
}

func c10Over108() decimal.Decimal {
	return dec("10").DivRound(dec("1.08"), conversionPrecision)
}

func TestSupportedCurrencies(t *testing.T) {
	c := NewCurrencyConverter(TreatUnknownAsReference)
	codes := c.SupportedCurrencies()
	assert.Len(t, codes, 20)
	assert.IsNonDecreasing(t, codes)
	assert.Equal(t, "AUD", codes[0])
	assert.True(t, c.IsSupported("chf"))
	assert.False(t, c.IsSupported("XYZ"))
}
