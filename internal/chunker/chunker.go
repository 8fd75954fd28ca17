// Package chunker splits normalised text into overlapping,
// token-bounded passages at sentence-like boundaries.
//
// The sentence boundary heuristic is deliberately approximate: a break
// happens after terminal punctuation followed by whitespace and an
// uppercase letter or digit. Abbreviations followed by lowercase
// continuations survive unsplit; some real boundaries are missed. The
// overlap between consecutive passages preserves semantic continuity
// that a fixed-size window would cut mid-thought.
package chunker

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxTokens is the default token budget per passage.
const DefaultMaxTokens = 500

// overlapRatio is the fraction of a closed passage's sentence units
// carried into the next passage as context.
const overlapRatio = 0.15

// Passage is one bounded cut of document text.
type Passage struct {
	// Content is the passage text, sentence units joined by spaces.
	Content string

	// Index is the zero-based, contiguous position in emission order.
	Index int
}

// Splitter cuts text into passages.
type Splitter struct {
	maxTokens int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithMaxTokens sets the token budget per passage.
func WithMaxTokens(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		maxTokens: DefaultMaxTokens,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Split cuts text into passages. Sentence units accumulate greedily
// until the next unit would exceed the token budget; the closed passage
// then seeds the next one with its trailing ceil(units*0.15) units
// (minimum 1) as overlap. Returns nil for empty or unit-less input.
func (s *Splitter) Split(text string) []Passage {
	units := splitSentences(text)
	if len(units) == 0 {
		return nil
	}

	var passages []Passage
	var current []string
	tokens := 0

	flush := func() {
		passages = append(passages, Passage{
			Content: strings.Join(current, " "),
			Index:   len(passages),
		})
	}

	for _, unit := range units {
		cost := estimateTokens(unit)

		if len(current) > 0 && tokens+cost > s.maxTokens {
			flush()

			carry := overlapCount(len(current))
			carried := current[len(current)-carry:]
			current = append(make([]string, 0, len(carried)+1), carried...)

			tokens = 0
			for _, u := range current {
				tokens += estimateTokens(u)
			}
		}

		current = append(current, unit)
		tokens += cost
	}

	if len(current) > 0 {
		flush()
	}

	return passages
}

// estimateTokens approximates the token cost of a unit as
// ceil(characters / 4). A cheap proxy, not an exact tokenizer.
func estimateTokens(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}

// overlapCount returns ceil(n * overlapRatio), clamped to at least 1.
func overlapCount(n int) int {
	c := int(math.Ceil(float64(n) * overlapRatio))
	if c < 1 {
		c = 1
	}
	return c
}

// splitSentences cuts text into sentence-like units. A unit ends at a
// terminal mark (., !, ?) when whitespace and then an uppercase letter
// or digit follow. Trailing text without a qualifying boundary becomes
// the final unit.
func splitSentences(text string) []string {
	runes := []rune(text)

	var units []string
	start := 0
	i := 0

	for i < len(runes) {
		r := runes[i]
		if r == '.' || r == '!' || r == '?' {
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if j > i+1 && j < len(runes) && (unicode.IsUpper(runes[j]) || unicode.IsDigit(runes[j])) {
				unit := strings.TrimSpace(string(runes[start : i+1]))
				if unit != "" {
					units = append(units, unit)
				}
				start = j
				i = j
				continue
			}
		}
		i++
	}

	if start < len(runes) {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			units = append(units, tail)
		}
	}

	return units
}
