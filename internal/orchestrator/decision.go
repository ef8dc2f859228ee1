package orchestrator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// ErrDecisionParse reports decision output that is not a JSON object. It is
// never fatal: the orchestrator falls back to retrieval.
var ErrDecisionParse = errors.New("orchestrator: decision parse failure")

// Decision is the interpreted decision-model output. It is one of Retrieve,
// Skip or Malformed.
type Decision interface {
	Action() string
	isDecision()
}

// Retrieve asks for the gateway to be called with Query and TopK.
type Retrieve struct {
	Query string
	TopK  int
}

// Skip means no retrieval. Requested holds the action the model gave.
type Skip struct {
	Requested string
}

// Malformed holds output that could not be parsed.
type Malformed struct {
	Raw string
	Err error
}

func (Retrieve) Action() string  { return "retrieve" }
func (Skip) Action() string      { return "none" }
func (Malformed) Action() string { return "malformed" }

func (Retrieve) isDecision()  {}
func (Skip) isDecision()      {}
func (Malformed) isDecision() {}

const fence = "```"

// Sanitize trims raw model output and, when it is wrapped in a fenced code
// block, returns the fenced body without the opening language tag.
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, fence) {
		return text
	}

	body := text[len(fence):]
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}

	return strings.TrimSpace(stripLanguageTag(body))
}

// stripLanguageTag drops a leading tag such as "json" when it is followed by
// whitespace or the start of a JSON value.
func stripLanguageTag(body string) string {
	end := strings.IndexFunc(body, func(r rune) bool { return !isTagRune(r) })
	if end <= 0 {
		return body
	}
	switch body[end] {
	case ' ', '\t', '\r', '\n', '{', '[':
		return body[end:]
	}
	return body
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

// ParseDecision interprets sanitized decision output for question. A
// retrieve action without a usable query falls back to the question; a
// missing or unusable top_k falls back to defaultTopK. Any action other than
// "retrieve" is a Skip.
func ParseDecision(text, question string, defaultTopK int) Decision {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return Malformed{Raw: text, Err: fmt.Errorf("%w: %w", ErrDecisionParse, err)}
	}

	var action string
	if raw, ok := fields["action"]; ok {
		_ = json.Unmarshal(raw, &action)
	}
	if action != "retrieve" {
		return Skip{Requested: action}
	}

	query := question
	if raw, ok := fields["query"]; ok {
		var q string
		if err := json.Unmarshal(raw, &q); err == nil && strings.TrimSpace(q) != "" {
			query = q
		}
	}

	topK := defaultTopK
	if raw, ok := fields["top_k"]; ok {
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil && n >= 1 && n == math.Trunc(n) && n <= math.MaxInt32 {
			topK = int(n)
		}
	}

	return Retrieve{Query: query, TopK: topK}
}
