package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"weightnav/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu    sync.Mutex
	byID  map[string]model.SolutionRecord
	byKey map[string]string // input key -> latest solution id
	ids   []string          // insertion order
}

func NewMemory() *Memory {
	return &Memory{
		byID:  map[string]model.SolutionRecord{},
		byKey: map[string]string{},
	}
}

func (m *Memory) SaveSolution(ctx context.Context, rec model.SolutionRecord) (model.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, ok := m.byID[rec.ID]; !ok {
		m.ids = append(m.ids, rec.ID)
	}
	m.byID[rec.ID] = rec
	if rec.InputKey != "" {
		m.byKey[rec.InputKey] = rec.ID
	}
	return rec, nil
}

func (m *Memory) GetSolution(ctx context.Context, id string) (model.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return model.SolutionRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) FindByInputKey(ctx context.Context, key string) (model.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[key]
	if !ok {
		return model.SolutionRecord{}, ErrNotFound
	}
	return m.byID[id], nil
}

// ListSolutions pages in insertion order; cursor is the id of the last item
// of the previous page.
func (m *Memory) ListSolutions(ctx context.Context, cursor string, limit int) ([]model.SolutionRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit = clampLimit(limit)
	start := 0
	if cursor != "" {
		start = len(m.ids)
		for i, id := range m.ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(m.ids) {
		end = len(m.ids)
	}
	items := make([]model.SolutionRecord, 0, end-start)
	for _, id := range m.ids[start:end] {
		items = append(items, m.byID[id])
	}
	next := ""
	if end < len(m.ids) {
		next = m.ids[end-1]
	}
	return items, next, nil
}
