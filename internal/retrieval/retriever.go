package retrieval

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dusk-indust/docqa/internal/corpus"
)

// DefaultTopK is the number of chunks returned when the caller does not say.
const DefaultTopK = 5

// minTermLength is the exclusive lower bound on query term length. Shorter
// tokens are treated as stop words.
const minTermLength = 3

// ScoredChunk pairs a chunk with its keyword score.
type ScoredChunk struct {
	Score int   `json:"score"`
	Chunk Chunk `json:"chunk"`
}

// Retriever scores corpus chunks against a query. It holds no per-call state
// and is safe for concurrent use.
type Retriever struct {
	chunkSize int
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithChunkSize sets the chunker size threshold.
func WithChunkSize(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// NewRetriever creates a Retriever using DefaultChunkSize unless overridden.
func NewRetriever(opts ...Option) *Retriever {
	r := &Retriever{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ChunkSize returns the chunker threshold in use.
func (r *Retriever) ChunkSize() int {
	return r.chunkSize
}

// Retrieve returns at most topK chunks with a positive score, best first.
// Equal scores keep discovery order: corpus order, then chunk order.
func (r *Retriever) Retrieve(query string, c *corpus.Corpus, topK int) []Chunk {
	if topK <= 0 {
		return []Chunk{}
	}
	scored := r.Score(query, c)
	if len(scored) > topK {
		scored = scored[:topK]
	}
	out := make([]Chunk, len(scored))
	for i, sc := range scored {
		out[i] = sc.Chunk
	}
	return out
}

// Score returns every chunk with a positive score, ranked by descending
// score with a stable tie-break. A query with no usable terms scores nothing.
func (r *Retriever) Score(query string, c *corpus.Corpus) []ScoredChunk {
	terms := Terms(query)
	if len(terms) == 0 {
		return []ScoredChunk{}
	}

	scored := []ScoredChunk{}
	for _, doc := range c.Documents() {
		for _, chunk := range ChunkDocument(doc.Name, doc.Text, r.chunkSize) {
			if s := scoreText(chunk.Text, terms); s > 0 {
				scored = append(scored, ScoredChunk{Score: s, Chunk: chunk})
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Terms lower-cases the whitespace-separated query tokens and keeps those
// longer than three characters. Duplicates are kept and count twice.
func Terms(query string) []string {
	var terms []string
	for _, tok := range strings.Fields(query) {
		tok = strings.ToLower(tok)
		if utf8.RuneCountInString(tok) > minTermLength {
			terms = append(terms, tok)
		}
	}
	return terms
}

func scoreText(text string, terms []string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, term := range terms {
		score += countOverlapping(lower, term)
	}
	return score
}

// countOverlapping counts occurrences of sub in s, allowing overlaps
// ("aa" occurs twice in "aaa").
func countOverlapping(s, sub string) int {
	if sub == "" {
		return 0
	}
	n := 0
	for {
		i := strings.Index(s, sub)
		if i < 0 {
			return n
		}
		n++
		_, size := utf8.DecodeRuneInString(s[i:])
		s = s[i+size:]
	}
}
