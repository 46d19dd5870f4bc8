// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/date"
	"github.com/username/divtracker/backend/src/logger"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxTickerLength       = 15
	MaxCurrencyCodeLength = 3
	MaxShareCount         = 1_000_000_000
	MaxHorizonYears       = 100
)

// Ticker symbols are letters and digits with optional exchange suffix or
// share class separators, e.g. BRK.B, VOW3.DE or RDS-A. Index symbols such
// as ^GSPC are rejected.
var tickerRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]*$`)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateTicker checks that s looks like a ticker symbol.
func ValidateTicker(s string) error {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "ticker"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(trimmed, MaxTickerLength, "ticker"); err != nil {
		return err
	}
	if !tickerRegex.MatchString(trimmed) {
		return fmt.Errorf("%w: ticker ('%s') may only contain letters, digits, '.' and '-'", ErrValidationFailed, trimmed)
	}
	return nil
}

// ValidateCurrencyCode checks that s is a known ISO 4217 code and returns it uppercased.
func ValidateCurrencyCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if err := ValidateStringNotEmpty(code, "currency"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(code, MaxCurrencyCodeLength, "currency"); err != nil {
		return "", err
	}
	if money.GetCurrency(code) == nil {
		return "", fmt.Errorf("%w: currency ('%s') is not a known ISO 4217 code", ErrValidationFailed, code)
	}
	return code, nil
}

// ValidateIntString parses a string to int64 and checks if it's within a range.
func ValidateIntString(s, fieldName string, minVal, maxVal int64) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return 0, err
	}

	val, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s ('%s') is not a valid integer", ErrValidationFailed, fieldName, s)
	}
	if val < minVal || val > maxVal {
		logger.L.Warn("Integer value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return 0, fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return val, nil
}

// ValidateShareCount parses a positive whole number of shares.
func ValidateShareCount(s string) (int64, error) {
	return ValidateIntString(s, "share count", 1, MaxShareCount)
}

// ValidateDecimalString parses a decimal amount. Negative values are rejected
// unless allowNegative is set.
func ValidateDecimalString(s, fieldName string, allowNegative bool) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return decimal.Zero, err
	}
	val, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s ('%s') is not a valid number", ErrValidationFailed, fieldName, s)
	}
	if !allowNegative && val.IsNegative() {
		logger.L.Warn("Negative value not allowed for field", "field", fieldName, "value", val.String())
		return decimal.Zero, fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	return val, nil
}

// ValidateISODate checks if a string is a valid calendar date in "YYYY-MM-DD" format.
func ValidateISODate(s, fieldName string) (date.Date, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return date.Date{}, err
	}
	d, err := date.Parse(trimmed)
	if err != nil {
		return date.Date{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD)", ErrValidationFailed, fieldName, s)
	}
	return d, nil
}
