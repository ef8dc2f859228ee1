package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultIncludes matches plain-text and markdown files at any depth.
var DefaultIncludes = []string{"**/*.md", "**/*.txt"}

// maxParallelReads bounds concurrent file reads during Load.
const maxParallelReads = 8

// Loader reads a knowledge-base directory into a Corpus.
type Loader struct {
	includes []string
	excludes []string
	logger   *slog.Logger
	progress io.Writer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithIncludes sets the doublestar patterns a file must match to be loaded.
func WithIncludes(patterns ...string) LoaderOption {
	return func(l *Loader) {
		if len(patterns) > 0 {
			l.includes = patterns
		}
	}
}

// WithExcludes sets doublestar patterns for files and directories to skip.
func WithExcludes(patterns ...string) LoaderOption {
	return func(l *Loader) {
		l.excludes = patterns
	}
}

// WithLogger sets the logger used for per-document load messages.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithProgress renders a progress bar to w while files are read.
func WithProgress(w io.Writer) LoaderOption {
	return func(l *Loader) {
		l.progress = w
	}
}

// NewLoader creates a Loader with the default include patterns.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		includes: DefaultIncludes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load walks dir and reads every matching file into a Corpus. Document names
// are slash-separated paths relative to dir, and documents are ordered by name.
// A missing directory is not an error: it yields an empty Corpus and a warning.
func (l *Loader) Load(ctx context.Context, dir string) (*Corpus, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Knowledge base directory not found", slog.String("dir", dir))
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("corpus: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus: not a directory: %s", dir)
	}

	names, err := l.collect(dir)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if l.progress != nil && len(names) > 0 {
		bar = progressbar.NewOptions(len(names),
			progressbar.OptionSetWriter(l.progress),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Loading corpus"),
			progressbar.OptionClearOnFinish(),
		)
	}

	docs := make([]Document, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
			if err != nil {
				return fmt.Errorf("corpus: read %s: %w", name, err)
			}
			docs[i] = Document{Name: name, Text: string(data)}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	for _, d := range docs {
		l.logger.Info("Loaded document", slog.String("name", d.Name), slog.Int("bytes", len(d.Text)))
	}

	c, err := FromDocuments(docs)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Knowledge base loaded", slog.Int("documents", c.Len()))
	return c, nil
}

// collect returns the sorted relative names of files under dir that match the
// include patterns and none of the exclude patterns.
func (l *Loader) collect(dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && l.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if l.included(rel) && !l.excluded(rel) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus: walk %s: %w", dir, err)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) included(rel string) bool {
	return matchAny(l.includes, rel)
}

func (l *Loader) excluded(rel string) bool {
	return matchAny(l.excludes, rel)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
