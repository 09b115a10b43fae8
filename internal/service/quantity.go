package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"grocerysearch/internal/model"

	"go.uber.org/zap"
)

// quantityUnits gates extraction: without one of these substrings the query is plain text.
var quantityUnits = []string{"kg", "g", "l", "ml"}

// quantityPattern matches a number, optional whitespace, then a unit.
// Digits are any Unicode decimal digit ("५kg") and the gap may hold a
// no-break space. Alternation is leftmost-first, so the two-letter units are
// listed before their one-letter prefixes: "1kg" stays kilograms and "500ml"
// stays milliliters. The unit is not word-bounded: "1 lemon" reads as 1l.
var quantityPattern = regexp.MustCompile(`(?i)(\p{Nd}+(?:\.\p{Nd}*)?)[\s\p{Zs}]*(kg|ml|g|l)`)

var (
	errUnknownUnit     = errors.New("unknown unit")
	errMalformedNumber = errors.New("malformed number")
)

// QuantityExtractor pulls a quantity token such as "1kg" or "500 ml" out of a free-text query
type QuantityExtractor struct {
	logger *zap.Logger
}

// NewQuantityExtractor creates a new quantity extractor
func NewQuantityExtractor(logger *zap.Logger) *QuantityExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuantityExtractor{logger: logger}
}

// Extract returns the first quantity found in raw, normalized to kilograms or
// milliliters, and the query with that token removed. When nothing usable is
// found it returns (nil, raw) unchanged. Extraction never fails the request.
//
// Only the first token is considered; "rice 5kg 1l" yields 5kg and leaves "rice  1l".
func (e *QuantityExtractor) Extract(raw string) (*model.Quantity, string) {
	if !containsUnit(raw) {
		return nil, raw
	}

	match := quantityPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, raw
	}

	quantity, err := parseQuantity(match[1], match[2])
	if err != nil {
		e.logger.Debug("quantity token ignored",
			zap.String("token", match[0]),
			zap.Error(err),
		)
		return nil, raw
	}

	residual := strings.TrimSpace(strings.Replace(raw, match[0], "", 1))
	return &quantity, residual
}

func containsUnit(raw string) bool {
	lower := strings.ToLower(raw)
	for _, unit := range quantityUnits {
		if strings.Contains(lower, unit) {
			return true
		}
	}
	return false
}

// parseQuantity converts a number and unit into a normalized quantity
func parseQuantity(number, unit string) (model.Quantity, error) {
	value, err := strconv.ParseFloat(asciiDigits(number), 64)
	if err != nil {
		return model.Quantity{}, fmt.Errorf("%w: %q", errMalformedNumber, number)
	}

	switch strings.ToLower(unit) {
	case "kg":
		return model.Weight(value), nil
	case "g":
		return model.Weight(value / 1000), nil
	case "l":
		return model.Volume(value * 1000), nil
	case "ml":
		return model.Volume(value), nil
	default:
		return model.Quantity{}, fmt.Errorf("%w: %q", errUnknownUnit, unit)
	}
}

// asciiDigits maps every Unicode decimal digit in s to its ASCII form.
// Decimal digit ranges in unicode.Nd always start at a zero and run in blocks of ten.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x80 || !unicode.Is(unicode.Nd, r) {
			return r
		}
		for _, rng := range unicode.Nd.R16 {
			if lo, hi := rune(rng.Lo), rune(rng.Hi); r >= lo && r <= hi {
				return '0' + (r-lo)%10
			}
		}
		for _, rng := range unicode.Nd.R32 {
			if lo, hi := rune(rng.Lo), rune(rng.Hi); r >= lo && r <= hi {
				return '0' + (r-lo)%10
			}
		}
		return r
	}, s)
}
