package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dusk-indust/docqa/internal/pipeline"
	"github.com/dusk-indust/docqa/internal/retrieval"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// RenderQuestion echoes the question before the pipeline runs.
func RenderQuestion(q string) string {
	return titleStyle.Render("[USER QUESTION]") + "\n" + q + "\n"
}

// RenderAnswer draws the answer in a box titled FINAL ANSWER, followed by a
// dim line naming the retrieved sources. width <= 0 leaves wrapping to the
// terminal.
func RenderAnswer(a *pipeline.Answer, width int) string {
	style := answerBoxStyle
	if width > 4 {
		style = style.Width(width - 2)
	}
	body := titleStyle.Render("FINAL ANSWER") + "\n\n" + a.Text
	out := style.Render(body)

	sources := uniqueSources(a)
	footer := fmt.Sprintf("decision=%s snippets=%d elapsed=%dms run=%s",
		a.Action, len(a.Snippets), a.ElapsedMs, a.RunID)
	if len(sources) > 0 {
		footer += " sources=" + strings.Join(sources, ",")
	}
	return out + "\n" + dimStyle.Render(footer) + "\n"
}

func uniqueSources(a *pipeline.Answer) []string {
	seen := make(map[string]struct{}, len(a.Snippets))
	var out []string
	for _, s := range a.Snippets {
		if _, ok := seen[s.Source]; ok {
			continue
		}
		seen[s.Source] = struct{}{}
		out = append(out, s.Source)
	}
	return out
}

// RenderScored draws each scored chunk in a box with the query terms
// highlighted.
func RenderScored(query string, results []retrieval.ScoredChunk) string {
	if len(results) == 0 {
		return dimStyle.Render("No matching chunks.") + "\n"
	}
	terms := retrieval.Terms(query)
	var b strings.Builder
	for i, r := range results {
		title := fmt.Sprintf("Result %d/%d  score=%d  source=%s", i+1, len(results), r.Score, r.Chunk.Source)
		b.WriteString(resultBoxStyle.Render(titleStyle.Render(title) + "\n\n" + Highlight(r.Chunk.Text, terms)))
		b.WriteString("\n")
	}
	return b.String()
}

// Highlight styles every case-insensitive occurrence of terms in text.
// Overlapping matches are merged.
func Highlight(text string, terms []string) string {
	if len(terms) == 0 || text == "" {
		return text
	}
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Case mapping changed byte offsets; leave the text unstyled.
		return text
	}
	marked := make([]bool, len(text))
	for _, term := range terms {
		if term == "" {
			continue
		}
		for start := 0; ; {
			i := strings.Index(lower[start:], term)
			if i < 0 {
				break
			}
			for j := start + i; j < start+i+len(term); j++ {
				marked[j] = true
			}
			start += i + 1
		}
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		j := i
		for j < len(text) && marked[j] == marked[i] {
			j++
		}
		if marked[i] {
			b.WriteString(highlightStyle.Render(text[i:j]))
		} else {
			b.WriteString(text[i:j])
		}
		i = j
	}
	return b.String()
}
