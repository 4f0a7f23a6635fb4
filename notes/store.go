// Package notes provides full-text storage and search for user notes.
package notes

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"

	werrors "github.com/vinayprograms/willow/errors"
)

// Note is one stored note.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Match is one search hit.
type Match struct {
	ID      string
	Content string
	Score   float64
}

// Store indexes notes in a Bleve full-text index.
type Store struct {
	mu    sync.RWMutex
	index bleve.Index
}

// Open opens or creates a note store at path. An empty path creates an
// in-memory index that is lost on Close.
func Open(path string) (*Store, error) {
	indexMapping := buildIndexMapping()

	var index bleve.Index
	var err error
	switch {
	case path == "":
		index, err = bleve.NewMemOnly(indexMapping)
	default:
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			index, err = bleve.New(path, indexMapping)
		} else {
			index, err = bleve.Open(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open note index: %w", err)
	}

	return &Store{index: index}, nil
}

// buildIndexMapping creates the Bleve index mapping for notes.
func buildIndexMapping() mapping.IndexMapping {
	noteMapping := bleve.NewDocumentMapping()

	contentMapping := bleve.NewTextFieldMapping()
	contentMapping.Analyzer = standard.Name
	noteMapping.AddFieldMappingsAt("content", contentMapping)

	idMapping := bleve.NewKeywordFieldMapping()
	noteMapping.AddFieldMappingsAt("id", idMapping)

	dateMapping := bleve.NewDateTimeFieldMapping()
	noteMapping.AddFieldMappingsAt("created_at", dateMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = noteMapping
	return indexMapping
}

// Add indexes a new note and returns its generated ID.
func (s *Store) Add(content string) (string, error) {
	if content == "" {
		return "", werrors.New(werrors.ErrCodeInvalidInput, "note content is empty")
	}

	note := Note{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.Index(note.ID, note); err != nil {
		return "", fmt.Errorf("failed to index note: %w", err)
	}
	return note.ID, nil
}

// Search returns the notes best matching the query, most relevant
// first, up to limit hits.
func (s *Store) Search(query string, limit int) ([]Match, error) {
	if query == "" {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "search query is empty")
	}
	if limit <= 0 {
		limit = 10
	}

	q := bleve.NewMatchQuery(query)
	q.SetField("content")
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"content"}

	s.mu.RLock()
	res, err := s.index.Search(req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("note search failed: %w", err)
	}

	matches := make([]Match, 0, len(res.Hits))
	for _, hit := range res.Hits {
		m := Match{ID: hit.ID, Score: hit.Score}
		if content, ok := hit.Fields["content"].(string); ok {
			m.Content = content
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Count returns the number of indexed notes.
func (s *Store) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close releases the underlying index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}
