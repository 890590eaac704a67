// Package numeric turns numbers scraped from reports and spreadsheets into
// parseable decimal strings.
//
// Scraped numbers mix decimal commas, decimal points and grouping separators.
// Under LocaleAuto the separator role is guessed from the position of the last
// separator: a last separator followed by a multiple of three characters is a
// thousands separator, anything else is the decimal point. The guess is lossy
// for a single separator followed by exactly three digits ("1.234" becomes
// 1234, "0.125" becomes 125); Ambiguous reports those inputs, and an explicit
// locale removes the guess.
package numeric

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ganot/hrv-ingest/internal/failure"
	"github.com/shopspring/decimal"
)

// ErrNotANumber is wrapped by every normalization failure.
var ErrNotANumber = errors.New("not a number")

// Locale selects how separators are interpreted.
type Locale string

const (
	// LocaleAuto guesses the decimal separator from its position.
	LocaleAuto Locale = "auto"
	// LocaleDecimalComma treats ',' as the decimal mark and '.' as grouping.
	LocaleDecimalComma Locale = "comma"
	// LocaleDecimalPoint treats '.' as the decimal mark and ',' as grouping.
	LocaleDecimalPoint Locale = "point"
)

// ParseLocale validates a configured locale name. An empty name means auto.
func ParseLocale(name string) (Locale, error) {
	switch Locale(strings.ToLower(strings.TrimSpace(name))) {
	case "", LocaleAuto:
		return LocaleAuto, nil
	case LocaleDecimalComma:
		return LocaleDecimalComma, nil
	case LocaleDecimalPoint:
		return LocaleDecimalPoint, nil
	default:
		return "", fmt.Errorf("unknown numeric locale %q", name)
	}
}

// Normalizer normalizes numeric tokens under one locale.
type Normalizer struct {
	Locale Locale
}

var auto = Normalizer{Locale: LocaleAuto}

// Normalize normalizes raw with the positional heuristic.
func Normalize(raw string) (string, error) {
	return auto.Normalize(raw)
}

// Decimal normalizes raw with the positional heuristic and parses it.
func Decimal(raw string) (decimal.Decimal, error) {
	return auto.Decimal(raw)
}

// Float normalizes raw with the positional heuristic and returns a float64.
func Float(raw string) (float64, error) {
	return auto.Float(raw)
}

// Normalize returns raw as a plain decimal string ("-1234.56").
func (n Normalizer) Normalize(raw string) (string, error) {
	s := stripSpace(raw)
	if s == "" {
		return "", notANumber(raw)
	}

	switch n.Locale {
	case LocaleDecimalComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case LocaleDecimalPoint:
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = resolveSeparators(strings.ReplaceAll(s, ",", "."))
	}

	if _, err := decimal.NewFromString(s); err != nil {
		return "", notANumber(raw)
	}
	return s, nil
}

// Decimal normalizes and parses raw.
func (n Normalizer) Decimal(raw string) (decimal.Decimal, error) {
	s, err := n.Normalize(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(s)
}

// Float normalizes raw and converts it to the nearest float64.
func (n Normalizer) Float(raw string) (float64, error) {
	d, err := n.Decimal(raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// Ambiguous reports whether raw has a single separator followed by exactly
// three digits, the one shape the positional heuristic cannot tell apart.
func Ambiguous(raw string) bool {
	s := strings.ReplaceAll(stripSpace(raw), ",", ".")
	if strings.Count(s, ".") != 1 {
		return false
	}
	tail := s[strings.LastIndex(s, ".")+1:]
	if len(tail) != 3 {
		return false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Guesses reports whether n would resolve raw by guessing, that is under the
// auto locale for an Ambiguous input.
func (n Normalizer) Guesses(raw string) bool {
	return (n.Locale == "" || n.Locale == LocaleAuto) && Ambiguous(raw)
}

// resolveSeparators applies the last-period rule to s, in which every
// separator is already a period.
func resolveSeparators(s string) string {
	last := strings.LastIndex(s, ".")
	if last == -1 {
		return s
	}
	fromEnd := len(s) - 1 - last
	if fromEnd%3 == 0 {
		return strings.ReplaceAll(s, ".", "")
	}
	return strings.ReplaceAll(s[:last], ".", "") + s[last:]
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func notANumber(raw string) error {
	return &failure.ParseError{Input: raw, Err: ErrNotANumber}
}
