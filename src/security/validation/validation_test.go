package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/divtracker/backend/src/date"
)

func TestValidateTicker(t *testing.T) {
	for _, ok := range []string{"AAPL", "brk.b", "VOW3.DE", "RDS-A", " KO "} {
		assert.NoError(t, ValidateTicker(ok), ok)
	}
	for _, bad := range []string{"", "   ", "^GSPC", "AA PL", "<script>", "ABCDEFGHIJKLMNOP"} {
		assert.ErrorIs(t, ValidateTicker(bad), ErrValidationFailed, bad)
	}
}

func TestValidateCurrencyCode(t *testing.T) {
	code, err := ValidateCurrencyCode(" eur ")
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)

	for _, bad := range []string{"", "EURO", "XQZ"} {
		_, err := ValidateCurrencyCode(bad)
		assert.ErrorIs(t, err, ErrValidationFailed, bad)
	}
}

func TestValidateShareCount(t *testing.T) {
	n, err := ValidateShareCount(" 10 ")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	for _, bad := range []string{"", "abc", "0", "-3", "2.5"} {
		_, err := ValidateShareCount(bad)
		assert.ErrorIs(t, err, ErrValidationFailed, bad)
	}
}

func TestValidateDecimalString(t *testing.T) {
	v, err := ValidateDecimalString("0.25", "dividend", false)
	require.NoError(t, err)
	assert.Equal(t, "0.25", v.String())

	_, err = ValidateDecimalString("-1", "dividend", false)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = ValidateDecimalString("one", "dividend", true)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateISODate(t *testing.T) {
	d, err := ValidateISODate("2024-01-01", "acquisition date")
	require.NoError(t, err)
	assert.Equal(t, date.MustParse("2024-01-01"), d)

	_, err = ValidateISODate("01-01-2024", "acquisition date")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSanitizers(t *testing.T) {
	assert.Equal(t, "AAPL", SanitizeTicker(" <b>AAPL</b>\x07 "))
	assert.Equal(t, "'=SUM(A1)", SanitizeForFormulaInjection("=SUM(A1)"))
	assert.Equal(t, "'-1", SanitizeForFormulaInjection("-1"))
	assert.Equal(t, "KO", SanitizeForFormulaInjection("KO"))
}

func TestValidateFileContent(t *testing.T) {
	ct, err := ValidateFileContentByMagicBytes(strings.NewReader("ticker,shares,date\nAAPL,10,2024-01-01\n"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)

	_, err = ValidateFileContentByMagicBytes(strings.NewReader("PK\x03\x04\x00\x00binary"))
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = ValidateFileContentByMagicBytes(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = ValidateFileContentByMagicBytes(strings.NewReader("ticker,shares,date\n<script>alert(1)</script>,1,2024-01-01\n"))
	assert.ErrorIs(t, err, ErrValidationFailed)

	assert.NoError(t, CheckXSSPatterns("BRK.B", "ticker"))
	assert.ErrorIs(t, CheckXSSPatterns(`<img src="javascript:x">`, "ticker"), ErrValidationFailed)

	assert.NoError(t, ValidateClientContentType("text/csv; charset=utf-8"))
	assert.Error(t, ValidateClientContentType("application/zip"))
}
