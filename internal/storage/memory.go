package storage

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	blob    Blob
	expires time.Time
}

// maxSweepInterval caps how long expired entries can outlive their TTL.
const maxSweepInterval = time.Minute

// Memory is a process-local Store with the same expiry semantics as Redis.
// Expired entries are dropped on lookup and swept from Put.
type Memory struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	m         map[string]memEntry
	nextSweep time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, m: map[string]memEntry{}}
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

func (s *Memory) Put(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := newKey(filename)
	b := Blob{Key: key, Filename: filename, ContentType: contentType, Data: append([]byte(nil), data...)}
	now := s.now()
	var exp time.Time
	if s.ttl > 0 {
		exp = now.Add(s.ttl)
	}
	s.mu.Lock()
	s.sweepLocked(now)
	s.m[key] = memEntry{blob: b, expires: exp}
	s.mu.Unlock()
	return key, nil
}

// sweepLocked deletes expired entries, at most once per sweep interval.
func (s *Memory) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Before(s.nextSweep) {
		return
	}
	for k, e := range s.m {
		if e.expired(now) {
			delete(s.m, k)
		}
	}
	s.nextSweep = now.Add(min(s.ttl, maxSweepInterval))
}

func (s *Memory) Get(ctx context.Context, key string) (Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	if !ok {
		return Blob{}, ErrNotFound
	}
	if e.expired(s.now()) {
		delete(s.m, key)
		return Blob{}, ErrNotFound
	}
	return e.blob, nil
}
