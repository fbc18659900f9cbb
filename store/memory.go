package store

import (
	"context"
	"sync"

	"hotel-pms/models"
)

// MemoryStore is the single-instance fallback used when redis is not configured.
type MemoryStore struct {
	mu        sync.RWMutex
	criteria  *models.RoomFilterCriteria
	selection *models.GuestSelection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveCriteria(_ context.Context, c models.RoomFilterCriteria) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria = &c
	return nil
}

func (m *MemoryStore) Criteria(_ context.Context) (*models.RoomFilterCriteria, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.criteria == nil {
		return nil, nil
	}
	c := *m.criteria
	return &c, nil
}

func (m *MemoryStore) SaveSelection(_ context.Context, s models.GuestSelection) (*models.GuestSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selection != nil && s.Timestamp <= m.selection.Timestamp {
		s.Timestamp = m.selection.Timestamp + 1
	}
	m.selection = &s
	out := s
	return &out, nil
}

func (m *MemoryStore) Selection(_ context.Context) (*models.GuestSelection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.selection == nil {
		return nil, nil
	}
	s := *m.selection
	return &s, nil
}

func (m *MemoryStore) ClearSelection(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
