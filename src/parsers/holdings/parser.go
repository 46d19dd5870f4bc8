// backend/src/parsers/holdings/parser.go
package holdings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/models"
	"github.com/username/divtracker/backend/src/security/validation"
)

// RawHolding holds the direct string values from a single row of an import file.
type RawHolding struct {
	Ticker, ShareCount, AcquisitionDate string
	Line                                int
}

// ParseResult is the outcome of one import. Holdings have no ID yet.
type ParseResult struct {
	Holdings []models.Holding
	Skipped  int
}

// Parser reads "ticker,shareCount,acquisitionDate" files with an optional header row.
type Parser struct{}

// NewParser creates a new instance of the holdings Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads every row of file. Rows with fewer than three fields, an empty
// field, a share count that is not a positive whole number, an invalid date
// or an invalid ticker are skipped.
func (p *Parser) Parse(file io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	result := &ParseResult{Holdings: []models.Holding{}}
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.L.Debug("Holdings parser: skipping unreadable row", "line", parseErr.Line, "error", err)
				result.Skipped++
				first = false
				continue
			}
			return nil, fmt.Errorf("holdings parser: failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}

		if isBlank(record) {
			continue
		}

		if len(record) < 3 {
			logger.L.Debug("Holdings parser: skipping row with missing fields", "line", line, "fields", len(record))
			result.Skipped++
			continue
		}

		holding, err := toHolding(RawHolding{Ticker: record[0], ShareCount: record[1], AcquisitionDate: record[2], Line: line})
		if err != nil {
			logger.L.Debug("Holdings parser: skipping invalid row", "line", line, "error", err)
			result.Skipped++
			continue
		}
		result.Holdings = append(result.Holdings, holding)
	}

	return result, nil
}

func isHeader(record []string) bool {
	return strings.Contains(strings.ToLower(strings.Join(record, ",")), "ticker")
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func toHolding(raw RawHolding) (models.Holding, error) {
	ticker := validation.SanitizeTicker(raw.Ticker)
	if err := validation.ValidateTicker(ticker); err != nil {
		return models.Holding{}, err
	}
	shares, err := validation.ValidateShareCount(raw.ShareCount)
	if err != nil {
		return models.Holding{}, err
	}
	acquired, err := validation.ValidateISODate(raw.AcquisitionDate, "acquisition date")
	if err != nil {
		return models.Holding{}, err
	}
	return models.Holding{
		Ticker:          models.DisplayTicker(ticker),
		ShareCount:      shares,
		AcquisitionDate: acquired,
	}, nil
}
