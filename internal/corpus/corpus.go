// Package corpus holds the read-only document snapshot that retrieval runs
// against, and the loader that builds it from a directory at startup.
package corpus

import (
	"fmt"
	"sort"
)

// Document is one loaded file. Name is unique within a Corpus.
type Document struct {
	Name string
	Text string
}

// Corpus is an immutable, ordered snapshot of documents. It is built once and
// only read afterwards, so it is safe for concurrent use without locking.
// Document order is the discovery order retrieval uses to break score ties.
type Corpus struct {
	docs  []Document
	index map[string]int
}

// New builds a Corpus from a name->text map. Map iteration order is random, so
// documents are ordered by name to keep retrieval deterministic.
func New(docs map[string]string) *Corpus {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	c := &Corpus{
		docs:  make([]Document, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, name := range names {
		c.index[name] = len(c.docs)
		c.docs = append(c.docs, Document{Name: name, Text: docs[name]})
	}
	return c
}

// FromDocuments builds a Corpus that keeps the given order. Duplicate names
// are rejected.
func FromDocuments(docs []Document) (*Corpus, error) {
	c := &Corpus{
		docs:  make([]Document, 0, len(docs)),
		index: make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		if _, exists := c.index[d.Name]; exists {
			return nil, fmt.Errorf("corpus: duplicate document %q", d.Name)
		}
		c.index[d.Name] = len(c.docs)
		c.docs = append(c.docs, d)
	}
	return c, nil
}

// Len returns the number of documents. A nil Corpus is empty.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// Documents returns the documents in snapshot order. The returned slice is a
// copy; mutating it does not affect the Corpus.
func (c *Corpus) Documents() []Document {
	if c == nil {
		return nil
	}
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Get returns the document with the given name.
func (c *Corpus) Get(name string) (Document, bool) {
	if c == nil {
		return Document{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Document{}, false
	}
	return c.docs[i], true
}

// Names returns document names in snapshot order.
func (c *Corpus) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.docs))
	for i, d := range c.docs {
		names[i] = d.Name
	}
	return names
}
