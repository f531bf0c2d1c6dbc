package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memKey struct {
	key string
	org uuid.UUID
}

// Memory keeps settings in process. Global rows use uuid.Nil as the org.
type Memory struct {
	mu   sync.RWMutex
	vals map[memKey]string
}

func NewMemory() *Memory { return &Memory{vals: map[memKey]string{}} }

func (m *Memory) Get(ctx context.Context, key string, orgID *uuid.UUID) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if orgID != nil {
		if v, ok := m.vals[memKey{key, *orgID}]; ok {
			return v, true, nil
		}
	}
	v, ok := m.vals[memKey{key, uuid.Nil}]
	return v, ok, nil
}

func (m *Memory) Upsert(ctx context.Context, key string, orgID *uuid.UUID, value string, secret bool) error {
	org := uuid.Nil
	if orgID != nil {
		org = *orgID
	}
	m.mu.Lock()
	m.vals[memKey{key, org}] = value
	m.mu.Unlock()
	return nil
}
