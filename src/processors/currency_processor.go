package processors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/divtracker/backend/src/logger"
)

// ReferenceCurrency is the currency every rate in the table is expressed against.
const ReferenceCurrency = "USD"

var ErrUnknownCurrency = errors.New("unknown currency")

// UnknownCurrencyPolicy decides what happens when a code is missing from the rate table.
type UnknownCurrencyPolicy int

const (
	// TreatUnknownAsReference converts unknown codes at rate 1.0, as if they were USD.
	// It is an approximation, not a precision guarantee.
	TreatUnknownAsReference UnknownCurrencyPolicy = iota
	// RejectUnknown makes ConvertStrict fail with ErrUnknownCurrency.
	RejectUnknown
)

func (p UnknownCurrencyPolicy) String() string {
	switch p {
	case TreatUnknownAsReference:
		return "treat_unknown_as_reference"
	case RejectUnknown:
		return "reject_unknown"
	default:
		return fmt.Sprintf("UnknownCurrencyPolicy(%d)", int(p))
	}
}

// usdRates holds the value of one unit of each currency in USD.
var usdRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("1.08"),
	"GBP": decimal.RequireFromString("1.27"),
	"CAD": decimal.RequireFromString("0.74"),
	"AUD": decimal.RequireFromString("0.65"),
	"JPY": decimal.RequireFromString("0.0067"),
	"CHF": decimal.RequireFromString("1.13"),
	"HKD": decimal.RequireFromString("0.13"),
	"SGD": decimal.RequireFromString("0.75"),
	"CNY": decimal.RequireFromString("0.14"),
	"KRW": decimal.RequireFromString("0.00075"),
	"INR": decimal.RequireFromString("0.012"),
	"BRL": decimal.RequireFromString("0.20"),
	"MXN": decimal.RequireFromString("0.058"),
	"SEK": decimal.RequireFromString("0.096"),
	"NOK": decimal.RequireFromString("0.094"),
	"DKK": decimal.RequireFromString("0.145"),
	"NZD": decimal.RequireFromString("0.61"),
	"ZAR": decimal.RequireFromString("0.055"),
	"TWD": decimal.RequireFromString("0.031"),
}

// conversionPrecision is the number of decimal places kept by a division.
const conversionPrecision = 16

type currencyConverterImpl struct {
	policy UnknownCurrencyPolicy
}

// NewCurrencyConverter creates a converter with the given policy for unknown codes.
// Convert always applies TreatUnknownAsReference; the policy only governs ConvertStrict.
func NewCurrencyConverter(policy UnknownCurrencyPolicy) CurrencyConverter {
	return &currencyConverterImpl{policy: policy}
}

func (c *currencyConverterImpl) rate(code string) (decimal.Decimal, bool) {
	r, ok := usdRates[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Convert returns amount × rate[from] / rate[to]. Unknown codes use rate 1.0.
func (c *currencyConverterImpl) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	if strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
		return amount
	}
	fromRate, ok := c.rate(from)
	if !ok {
		logger.L.Debug("Unknown currency treated as reference", "currency", from, "policy", TreatUnknownAsReference.String())
		fromRate = decimal.NewFromInt(1)
	}
	toRate, ok := c.rate(to)
	if !ok {
		logger.L.Debug("Unknown currency treated as reference", "currency", to, "policy", TreatUnknownAsReference.String())
		toRate = decimal.NewFromInt(1)
	}
	return amount.Mul(fromRate).DivRound(toRate, conversionPrecision)
}

// ConvertStrict behaves like Convert unless the converter was built with
// RejectUnknown, in which case unknown codes return ErrUnknownCurrency.
func (c *currencyConverterImpl) ConvertStrict(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if c.policy == RejectUnknown {
		for _, code := range []string{from, to} {
			if _, ok := c.rate(code); !ok {
				return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
			}
		}
	}
	return c.Convert(amount, from, to), nil
}

func (c *currencyConverterImpl) IsSupported(code string) bool {
	_, ok := c.rate(code)
	return ok
}

// SupportedCurrencies lists the codes of the rate table in lexical order.
func (c *currencyConverterImpl) SupportedCurrencies() []string {
	codes := make([]string, 0, len(usdRates))
	for code := range usdRates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
