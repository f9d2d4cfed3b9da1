// Package operations tracks the status of upload operations, one record per
// correlation ID.
package operations

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status is the state of an upload operation.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusError       Status = "error"
	StatusRateLimited Status = "rate_limited"
	StatusSSLError    Status = "ssl_error"
)

// DefaultLimit is the number of operations a Store keeps by default.
const DefaultLimit = 1000

// ErrNotFound is returned for an unknown operation ID.
var ErrNotFound = errors.New("operation not found")

// Operation is the status record of one upload.
type Operation struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename,omitempty"`
	Status    Status    `json:"status"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Done reports whether the operation reached a final state.
func (o Operation) Done() bool {
	return o.Status != StatusProcessing && o.Status != StatusIdle
}

// Notifier is called with a copy of every created or updated operation.
type Notifier func(Operation)

// Store is an in-memory, concurrency-safe operation store. Once it holds
// more than its limit, the oldest finished operations are evicted.
type Store struct {
	mu     sync.RWMutex
	ops    map[string]*Operation
	latest string
	limit  int
	notify Notifier
	now    func() time.Time
}

// NewStore creates an empty Store holding at most limit operations that
// are finished. limit <= 0 selects DefaultLimit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		ops:   make(map[string]*Operation),
		limit: limit,
		now:   time.Now,
	}
}

// SetNotifier registers fn to receive every change.
func (s *Store) SetNotifier(fn Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// Start records a new processing operation.
func (s *Store) Start(id, filename string) (Operation, error) {
	if id == "" {
		return Operation{}, fmt.Errorf("operation ID is required")
	}

	s.mu.Lock()
	if _, exists := s.ops[id]; exists {
		s.mu.Unlock()
		return Operation{}, fmt.Errorf("operation %s already exists", id)
	}
	now := s.now()
	op := &Operation{
		ID:        id,
		Filename:  filename,
		Status:    StatusProcessing,
		Details:   "Processing file: " + filename,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.ops[id] = op
	s.latest = id
	s.evict()
	out, notify := *op, s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(out)
	}
	return out, nil
}

// Finish sets the final status and details of an operation.
func (s *Store) Finish(id string, status Status, details string) (Operation, error) {
	s.mu.Lock()
	op, exists := s.ops[id]
	if !exists {
		s.mu.Unlock()
		return Operation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	op.Status = status
	op.Details = details
	op.UpdatedAt = s.now()
	s.latest = id
	out, notify := *op, s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(out)
	}
	return out, nil
}

// Get returns a copy of the operation with id.
func (s *Store) Get(id string) (Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, exists := s.ops[id]
	if !exists {
		return Operation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *op, nil
}

// Latest returns the most recently changed operation, or an idle record
// when there is none.
func (s *Store) Latest() Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if op, ok := s.ops[s.latest]; ok {
		return *op
	}
	return Operation{Status: StatusIdle}
}

// List returns all operations, newest first.
func (s *Store) List() []Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Operation, 0, len(s.ops))
	for _, op := range s.ops {
		out = append(out, *op)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// evict drops the oldest finished operations while the store is over its
// limit. Operations still processing are never dropped. Callers hold s.mu.
func (s *Store) evict() {
	excess := len(s.ops) - s.limit
	if excess <= 0 {
		return
	}

	done := make([]*Operation, 0, len(s.ops))
	for _, op := range s.ops {
		if op.Done() {
			done = append(done, op)
		}
	}
	sort.Slice(done, func(i, j int) bool {
		if done[i].UpdatedAt.Equal(done[j].UpdatedAt) {
			return done[i].ID < done[j].ID
		}
		return done[i].UpdatedAt.Before(done[j].UpdatedAt)
	})
	for _, op := range done[:min(excess, len(done))] {
		delete(s.ops, op.ID)
	}
}
