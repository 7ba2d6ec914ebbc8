package store

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// Memory is an arena-backed Store: the id of a document is its index in an
// append-only slice.
type Memory struct {
	mu     sync.RWMutex
	texts  []string
	closed bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	m.texts = append(m.texts, text)
	return len(m.texts) - 1, nil
}

func (m *Memory) Get(_ context.Context, id int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrClosed
	}
	if id < 0 || id >= len(m.texts) {
		return "", fmt.Errorf("document %d: %w", id, apperrors.ErrDocumentNotFound)
	}
	return m.texts[id], nil
}

func (m *Memory) All(_ context.Context) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	docs := make([]Document, len(m.texts))
	for id, text := range m.texts {
		docs[id] = Document{ID: id, Text: text}
	}
	return docs, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.texts)
}

func (m *Memory) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.texts = nil
	return nil
}
