// Package retrieval implements keyword-overlap retrieval over an in-memory
// corpus: paragraph-aligned chunking, substring-count scoring and stable
// ranking. Chunks are recomputed on every call; there is no index.
package retrieval

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the soft chunk length target, in characters.
const DefaultChunkSize = 400

// paragraphSep separates paragraphs in the source text and inside a chunk.
const paragraphSep = "\n\n"

// Chunk is a paragraph-aligned span of one document.
type Chunk struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// ChunkDocument splits text into chunks of whole paragraphs. Paragraphs are
// accumulated while the joined chunk stays strictly below sizeThreshold
// characters. A single paragraph at or above the threshold becomes its own
// chunk and is never split. A non-positive threshold uses DefaultChunkSize.
func ChunkDocument(name, text string, sizeThreshold int) []Chunk {
	if sizeThreshold <= 0 {
		sizeThreshold = DefaultChunkSize
	}

	var (
		chunks []Chunk
		buf    strings.Builder
		bufLen int
	)
	flush := func() {
		if bufLen == 0 {
			return
		}
		chunks = append(chunks, Chunk{Source: name, Text: buf.String()})
		buf.Reset()
		bufLen = 0
	}

	for _, para := range Paragraphs(text) {
		paraLen := utf8.RuneCountInString(para)
		if bufLen > 0 && bufLen+len(paragraphSep)+paraLen < sizeThreshold {
			buf.WriteString(paragraphSep)
			buf.WriteString(para)
			bufLen += len(paragraphSep) + paraLen
			continue
		}
		flush()
		buf.WriteString(para)
		bufLen = paraLen
	}
	flush()

	return chunks
}

// Paragraphs splits text on blank lines and returns the trimmed, non-empty
// paragraphs in order. CRLF line endings are treated as LF.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(text, paragraphSep)
	paras := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}
