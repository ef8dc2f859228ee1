package retrieval

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/dusk-indust/docqa/internal/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"fraud explainability timeline", []string{"fraud", "explainability", "timeline"}},
		{"What is the Q3 performance", []string{"what", "performance"}},
		{"a an the of", nil},
		{"", nil},
		{"  FRAUD\tFraud\nfraud ", []string{"fraud", "fraud", "fraud"}},
		{"café", []string{"café"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Terms(tt.query))
		})
	}
}

func TestCountOverlapping(t *testing.T) {
	assert.Equal(t, 0, countOverlapping("abc", ""))
	assert.Equal(t, 0, countOverlapping("abc", "xyz"))
	assert.Equal(t, 2, countOverlapping("aaaaa", "aaaa"))
	assert.Equal(t, 3, countOverlapping("fraud fraud fraud", "fraud"))
	assert.Equal(t, 2, countOverlapping("éééé", "ééé"))
}

func TestRetrieve_Scenario(t *testing.T) {
	c := corpus.New(map[string]string{
		"a.md": "Fraud detection model launched in Q2.\n\nExplainability feature planned for Q4.",
	})
	r := NewRetriever()

	results := r.Retrieve("fraud explainability timeline", c, 5)

	require.NotEmpty(t, results)
	var joined []string
	for _, res := range results {
		assert.Equal(t, "a.md", res.Source)
		joined = append(joined, res.Text)
	}
	all := strings.Join(joined, "\n\n")
	assert.Contains(t, all, "Fraud detection model launched in Q2.")
	assert.Contains(t, all, "Explainability feature planned for Q4.")
}

func TestRetrieve_ScenarioSmallChunksTieBreak(t *testing.T) {
	c := corpus.New(map[string]string{
		"a.md": "Fraud detection model launched in Q2.\n\nExplainability feature planned for Q4.",
	})
	r := NewRetriever(WithChunkSize(50))

	scored := r.Score("fraud explainability timeline", c)

	require.Len(t, scored, 2)
	assert.Equal(t, 1, scored[0].Score)
	assert.Equal(t, 1, scored[1].Score)
	assert.Equal(t, "Fraud detection model launched in Q2.", scored[0].Chunk.Text, "tie keeps discovery order")
	assert.Equal(t, "Explainability feature planned for Q4.", scored[1].Chunk.Text)
}

func TestRetrieve_RanksByScoreAcrossDocuments(t *testing.T) {
	c := corpus.New(map[string]string{
		"a.md": "Budget review notes.",
		"b.md": "Fraud fraud fraud detection.",
		"c.md": "Fraud once.",
	})
	r := NewRetriever()

	scored := r.Score("fraud", c)

	require.Len(t, scored, 2)
	assert.Equal(t, "b.md", scored[0].Chunk.Source)
	assert.Equal(t, 3, scored[0].Score)
	assert.Equal(t, "c.md", scored[1].Chunk.Source)
	assert.Equal(t, 1, scored[1].Score)
}

func TestRetrieve_CaseInsensitive(t *testing.T) {
	c := corpus.New(map[string]string{"a.md": "EXPLAINABILITY matters"})
	results := NewRetriever().Retrieve("Explainability", c, 5)
	require.Len(t, results, 1)
}

func TestRetrieve_SubstringMatches(t *testing.T) {
	c := corpus.New(map[string]string{"a.md": "The models were retrained."})
	results := NewRetriever().Retrieve("model", c, 5)
	require.Len(t, results, 1, "term matches inside longer words")
}

func TestRetrieve_EmptyTermsReturnsNothing(t *testing.T) {
	c := corpus.New(map[string]string{"a.md": "the cat sat on a mat and the dog ran"})
	r := NewRetriever()

	for _, q := range []string{"", "   ", "the cat", "a an of to"} {
		results := r.Retrieve(q, c, 5)
		assert.NotNil(t, results)
		assert.Empty(t, results, "query %q", q)
	}
}

func TestRetrieve_NeverPads(t *testing.T) {
	c := corpus.New(map[string]string{
		"a.md": "fraud",
		"b.md": "nothing relevant",
	})
	results := NewRetriever().Retrieve("fraud", c, 10)
	assert.Len(t, results, 1)
}

func TestRetrieve_TopKBounds(t *testing.T) {
	docs := map[string]string{}
	for i := 0; i < 8; i++ {
		docs[fmt.Sprintf("doc-%d.md", i)] = "fraud report"
	}
	c := corpus.New(docs)
	r := NewRetriever()

	assert.Len(t, r.Retrieve("fraud", c, 3), 3)
	assert.Empty(t, r.Retrieve("fraud", c, 0))
	assert.Empty(t, r.Retrieve("fraud", c, -1))
}

func TestRetrieve_NilCorpus(t *testing.T) {
	assert.Empty(t, NewRetriever().Retrieve("fraud", nil, 5))
}

func randomCorpus(rng *rand.Rand) *corpus.Corpus {
	vocab := []string{"fraud", "model", "explainability", "quarter", "launch", "risk", "the", "and", "planned"}
	docs := map[string]string{}
	for d := 0; d < 1+rng.Intn(5); d++ {
		var paras []string
		for p := 0; p < 1+rng.Intn(6); p++ {
			var words []string
			for w := 0; w < 1+rng.Intn(40); w++ {
				words = append(words, vocab[rng.Intn(len(vocab))])
			}
			paras = append(paras, strings.Join(words, " "))
		}
		docs[fmt.Sprintf("doc-%d.md", d)] = strings.Join(paras, "\n\n")
	}
	return corpus.New(docs)
}

func TestRetrieve_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	queries := []string{"fraud model", "explainability timeline", "risk launch planned", "the and", "quarter"}
	r := NewRetriever(WithChunkSize(120))

	for i := 0; i < 100; i++ {
		c := randomCorpus(rng)
		for _, q := range queries {
			topK := 1 + rng.Intn(6)

			scored := r.Score(q, c)
			for j, sc := range scored {
				assert.Greater(t, sc.Score, 0)
				if j > 0 {
					assert.LessOrEqual(t, sc.Score, scored[j-1].Score, "descending order")
				}
			}

			results := r.Retrieve(q, c, topK)
			assert.LessOrEqual(t, len(results), topK)

			// Idempotent: no hidden state between calls.
			assert.Equal(t, results, r.Retrieve(q, c, topK))
		}
	}
}

func TestRetrieve_ConcurrentReaders(t *testing.T) {
	c := corpus.New(map[string]string{
		"a.md": "Fraud detection model launched in Q2.",
		"b.md": "Explainability feature planned for Q4.",
	})
	r := NewRetriever()
	want := r.Retrieve("fraud explainability", c, 5)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, r.Retrieve("fraud explainability", c, 5))
		}()
	}
	wg.Wait()
}
