package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrDocumentNotFound = errors.New("document not found")

// Store holds the current Snapshot and applies every transform while holding
// the lock, so no caller can observe a half-applied operation. Callers only
// ever receive copies.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
}

func New() *Store {
	return &Store{}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

func (s *Store) Document(id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.current.Find(id)
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc, nil
}

func (s *Store) Active() (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Active()
}

func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.ActiveID
}

// AddDocuments returns the active id after the documents were added.
func (s *Store) AddDocuments(docs []Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			return s.current.ActiveID, fmt.Errorf("document %q has no id", d.Name)
		}
		if seen[d.ID] || s.current.Has(d.ID) {
			return s.current.ActiveID, fmt.Errorf("duplicate document id %s", d.ID)
		}
		seen[d.ID] = true
	}

	s.current = s.current.AddDocuments(docs)
	return s.current.ActiveID, nil
}

// RemoveDocument returns the active id after the removal.
func (s *Store) RemoveDocument(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.Has(id) {
		return s.current.ActiveID, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	s.current = s.current.RemoveDocument(id)
	return s.current.ActiveID, nil
}

func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.Has(id) {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	s.current = s.current.SetActive(id)
	return nil
}

func (s *Store) ReplaceHistory(id string, history []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.Has(id) {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	s.current = s.current.ReplaceHistory(id, history)
	return nil
}

// AppendMessages appends to a document's history and returns the new history.
func (s *Store) AppendMessages(id string, msgs ...Message) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.current.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	history := append(slices.Clone(s.current.Documents[i].ChatHistory), msgs...)
	s.current = s.current.ReplaceHistory(id, history)
	return slices.Clone(history), nil
}
