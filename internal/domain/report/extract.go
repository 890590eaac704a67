package report

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ganot/hrv-ingest/internal/domain/numeric"
)

// Extractor applies rule sets to documents.
type Extractor struct {
	numbers numeric.Normalizer
	logger  *slog.Logger
	anchors sync.Map // anchor text -> *regexp.Regexp
}

// NewExtractor creates an extractor. A nil logger discards diagnostics.
func NewExtractor(numbers numeric.Normalizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{numbers: numbers, logger: logger}
}

// Extract applies set to doc. Fields whose rule does not match are left out
// of the result, reported as misses and logged.
func (e *Extractor) Extract(doc Document, set RuleSet) Extraction {
	out := Extraction{Kind: doc.Kind, Source: doc.Source, Fields: Fields{}}
	for _, rule := range set.All() {
		val, capture, reason := e.apply(doc, rule)
		if reason != "" {
			out.Misses = append(out.Misses, Miss{Field: rule.Field, Reason: reason})
			e.logger.Warn("field not extracted",
				"document", string(doc.Kind),
				"source", doc.Source,
				"field", rule.Field,
				"reason", reason,
			)
			continue
		}
		out.Fields[rule.Field] = val
		if rule.Type != TypeText && rule.Normalize && e.numbers.Guesses(capture) {
			note := fmt.Sprintf("%q read as %s", capture, val)
			out.Ambiguous = append(out.Ambiguous, Miss{Field: rule.Field, Reason: note})
			e.logger.Warn("ambiguous number separator",
				"document", string(doc.Kind),
				"source", doc.Source,
				"field", rule.Field,
				"raw", capture,
				"value", val.String(),
			)
		}
	}
	return out
}

func (e *Extractor) apply(doc Document, rule Rule) (Value, string, string) {
	region, reason := e.narrow(doc, rule)
	if reason != "" {
		return Value{}, "", reason
	}

	matches := rule.Pattern.FindAllStringSubmatch(region, rule.Match+1)
	if len(matches) <= rule.Match {
		return Value{}, "", "no match"
	}
	groups := matches[rule.Match]
	if rule.Group >= len(groups) {
		return Value{}, "", fmt.Sprintf("pattern has no group %d", rule.Group)
	}
	capture := strings.TrimSpace(groups[rule.Group])
	if capture == "" {
		return Value{}, "", "empty match"
	}
	val, reason := e.convert(capture, rule)
	return val, capture, reason
}

func (e *Extractor) anchor(text string) *regexp.Regexp {
	if re, ok := e.anchors.Load(text); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := e.anchors.LoadOrStore(text, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(text)))
	return re.(*regexp.Regexp)
}

func (e *Extractor) narrow(doc Document, rule Rule) (string, string) {
	text := doc.Text()
	if rule.Page > 0 {
		if rule.Page > len(doc.Pages) {
			return "", fmt.Sprintf("page %d missing", rule.Page)
		}
		text = doc.Pages[rule.Page-1]
	}
	if rule.Line > 0 {
		lines := strings.Split(text, "\n")
		if rule.Line > len(lines) {
			return "", fmt.Sprintf("line %d missing", rule.Line)
		}
		text = lines[rule.Line-1]
	}
	if rule.Anchor != "" {
		loc := e.anchor(rule.Anchor).FindStringIndex(text)
		if loc == nil {
			return "", fmt.Sprintf("anchor %q not found", rule.Anchor)
		}
		text = text[loc[1]:]
		if rule.Window > 0 && len(text) > rule.Window {
			text = text[:rule.Window]
		}
	}
	return text, ""
}

func (e *Extractor) convert(capture string, rule Rule) (Value, string) {
	if rule.Type == TypeText {
		return Text(capture), ""
	}

	var (
		f   float64
		err error
	)
	if rule.Normalize {
		f, err = e.numbers.Float(capture)
	} else {
		f, err = strconv.ParseFloat(capture, 64)
	}
	if err != nil {
		return Value{}, fmt.Sprintf("not a number: %q", capture)
	}

	if rule.Type == TypeInteger {
		if f != math.Trunc(f) {
			return Value{}, fmt.Sprintf("not an integer: %q", capture)
		}
		return Integer(int64(f)), ""
	}
	return Number(f), ""
}
