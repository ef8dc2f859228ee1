package orchestrator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"action":"none"}`, `{"action":"none"}`},
		{"surrounding whitespace", "  \n{\"action\":\"none\"}\n ", `{"action":"none"}`},
		{"json fence", "```json\n{\"action\":\"none\"}\n```", `{"action":"none"}`},
		{"bare fence", "```\n{\"action\":\"none\"}\n```", `{"action":"none"}`},
		{"other tag", "```JSON5\n{\"action\":\"none\"}\n```", `{"action":"none"}`},
		{"unterminated fence", "```json\n{\"action\":\"none\"}", `{"action":"none"}`},
		{"inline fence", "```{\"action\": \"none\"}```", `{"action": "none"}`},
		{"inline fence with tag", "```json {\"action\":\"none\"}```", `{"action":"none"}`},
		{"tag and json on first line", "```json {\"action\":\"none\"}\n```", `{"action":"none"}`},
		{"tag glued to json", "```json{\"action\":\"none\"}```", `{"action":"none"}`},
		{"tag glued to array", "```json[1,2]```", `[1,2]`},
		{"not fenced", "not valid json", "not valid json"},
		{"trailing prose after fence", "```json\n{\"action\":\"none\"}\n```\nHope this helps", `{"action":"none"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}

func TestParseDecision(t *testing.T) {
	const question = "What is the fraud model timeline?"

	tests := []struct {
		name string
		text string
		want Decision
	}{
		{
			name: "retrieve with query and top_k",
			text: `{"action":"retrieve","query":"fraud model","top_k":3}`,
			want: Retrieve{Query: "fraud model", TopK: 3},
		},
		{
			name: "retrieve defaults",
			text: `{"action":"retrieve"}`,
			want: Retrieve{Query: question, TopK: 5},
		},
		{
			name: "retrieve empty query falls back to question",
			text: `{"action":"retrieve","query":"  "}`,
			want: Retrieve{Query: question, TopK: 5},
		},
		{
			name: "retrieve non-string query falls back to question",
			text: `{"action":"retrieve","query":42}`,
			want: Retrieve{Query: question, TopK: 5},
		},
		{
			name: "integral float top_k",
			text: `{"action":"retrieve","query":"q","top_k":7.0}`,
			want: Retrieve{Query: "q", TopK: 7},
		},
		{
			name: "zero top_k uses default",
			text: `{"action":"retrieve","query":"q","top_k":0}`,
			want: Retrieve{Query: "q", TopK: 5},
		},
		{
			name: "string top_k uses default",
			text: `{"action":"retrieve","query":"q","top_k":"ten"}`,
			want: Retrieve{Query: "q", TopK: 5},
		},
		{
			name: "none",
			text: `{"action":"none"}`,
			want: Skip{Requested: "none"},
		},
		{
			name: "other action skips",
			text: `{"action":"search_web"}`,
			want: Skip{Requested: "search_web"},
		},
		{
			name: "missing action skips",
			text: `{}`,
			want: Skip{},
		},
		{
			name: "action case matters",
			text: `{"action":"RETRIEVE"}`,
			want: Skip{Requested: "RETRIEVE"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDecision(tt.text, question, 5))
		})
	}
}

func TestParseDecision_Malformed(t *testing.T) {
	for _, text := range []string{"not valid json", "", `["retrieve"]`, `"retrieve"`, `{"action":`} {
		t.Run(text, func(t *testing.T) {
			d := ParseDecision(text, "q", 5)
			m, ok := d.(Malformed)
			require.True(t, ok, "got %#v", d)
			assert.Equal(t, text, m.Raw)
			assert.True(t, errors.Is(m.Err, ErrDecisionParse))
			assert.Equal(t, "malformed", m.Action())
		})
	}
}

func TestParseDecision_FencedNone(t *testing.T) {
	for _, raw := range []string{
		"```json\n{\"action\":\"none\"}\n```",
		"```json {\"action\":\"none\"}\n```",
		"```json{\"action\":\"none\"}```",
	} {
		t.Run(raw, func(t *testing.T) {
			d := ParseDecision(Sanitize(raw), "q", 5)
			assert.Equal(t, Skip{Requested: "none"}, d)
			assert.Equal(t, "none", d.Action())
		})
	}
}
