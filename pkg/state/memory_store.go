package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	states "github.com/goliatone/go-states"
	"github.com/goliatone/go-states/layering"
	"github.com/goliatone/go-states/pkg/activity"
	"github.com/google/uuid"
)

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithStoreLogger attaches a logger.
func WithStoreLogger(logger states.Logger) StoreOption {
	return func(s *MemoryStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreEmitter emits a snapshot created event for every Set entry.
func WithStoreEmitter(emitter *activity.Emitter) StoreOption {
	return func(s *MemoryStore) {
		s.emitter = emitter
	}
}

// WithStoreClock overrides the clock used for Meta.CreatedAt.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

type entry struct {
	meta  Meta
	value layering.Map
}

type namespaceLog struct {
	entries []entry
	stopped bool
}

// MemoryStore is a versioned, concurrency-safe shared state store. It
// implements states.Fetcher.
type MemoryStore struct {
	mu      sync.RWMutex
	logs    map[states.Namespace]*namespaceLog
	logger  states.Logger
	emitter *activity.Emitter
	now     func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		logs:   map[states.Namespace]*namespaceLog{},
		logger: states.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register makes ns known to the store. Registering twice is a no-op.
func (s *MemoryStore) Register(ns states.Namespace) error {
	if ns == "" {
		return states.ErrNamespaceRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[ns]; !ok {
		s.logs[ns] = &namespaceLog{}
	}
	return nil
}

// Unregister forgets ns and all of its entries.
func (s *MemoryStore) Unregister(ns states.Namespace) {
	s.mu.Lock()
	delete(s.logs, ns)
	s.mu.Unlock()
}

// Namespaces lists registered namespaces sorted by name.
func (s *MemoryStore) Namespaces() []states.Namespace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]states.Namespace, 0, len(s.logs))
	for ns := range s.logs {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Create appends a Set entry for anchor holding a copy of value.
func (s *MemoryStore) Create(ctx context.Context, ns states.Namespace, value layering.Map, anchor states.Anchor) (Meta, error) {
	meta, err := s.appendEntry(ns, anchor, states.StatusSet, value)
	if err != nil {
		return Meta{}, err
	}
	s.emitCreated(ctx, anchor, meta)
	return meta, nil
}

// CreatePending appends a pending entry for anchor. Fetches at or after this
// version report pending until Resolve is called, unless an earlier Set
// entry exists.
func (s *MemoryStore) CreatePending(ns states.Namespace, anchor states.Anchor) (Meta, error) {
	return s.appendEntry(ns, anchor, states.StatusPending, nil)
}

// Resolve fills the pending entry created for anchor.Version.
func (s *MemoryStore) Resolve(ctx context.Context, ns states.Namespace, value layering.Map, anchor states.Anchor) (Meta, error) {
	s.mu.Lock()
	log, ok := s.logs[ns]
	if !ok {
		s.mu.Unlock()
		return Meta{}, fmt.Errorf("%w: %s", ErrNotRegistered, ns)
	}
	idx := -1
	for i := len(log.entries) - 1; i >= 0; i-- {
		if log.entries[i].meta.Version == anchor.Version && log.entries[i].meta.Status == states.StatusPending {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return Meta{}, fmt.Errorf("%w: %s@%d", ErrNotPending, ns, anchor.Version)
	}
	resolved := &log.entries[idx]
	resolved.meta.Status = states.StatusSet
	resolved.meta.CreatedAt = s.now()
	resolved.value = cloneValue(value)
	meta := resolved.meta
	s.mu.Unlock()

	s.logger.Debug("state: pending entry resolved", "namespace", string(ns), "version", anchor.Version)
	s.emitCreated(ctx, anchor, meta)
	return meta, nil
}

// Stop marks ns as finished: anchors with no Set entry read as StatusNone
// instead of pending, and further writes fail with ErrStopped.
func (s *MemoryStore) Stop(ns states.Namespace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.logs[ns]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, ns)
	}
	log.stopped = true
	return nil
}

// Fetch implements states.Fetcher with states.ResolutionAny.
func (s *MemoryStore) Fetch(ns states.Namespace, anchor states.Anchor) states.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.logs[ns]
	if !ok {
		return states.NoneSnapshot()
	}
	upper := sort.Search(len(log.entries), func(i int) bool {
		return log.entries[i].meta.Version > anchor.Version
	})
	for i := upper - 1; i >= 0; i-- {
		e := log.entries[i]
		if e.meta.Status != states.StatusSet {
			continue
		}
		snapshot := states.SetSnapshot(e.value.Clone())
		snapshot.Version = e.meta.Version
		snapshot.SnapshotID = e.meta.SnapshotID
		return snapshot
	}
	if log.stopped {
		return states.NoneSnapshot()
	}
	return states.PendingSnapshot()
}

func (s *MemoryStore) appendEntry(ns states.Namespace, anchor states.Anchor, status states.Status, value layering.Map) (Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[ns]
	if !ok {
		return Meta{}, fmt.Errorf("%w: %s", ErrNotRegistered, ns)
	}
	if log.stopped {
		return Meta{}, fmt.Errorf("%w: %s", ErrStopped, ns)
	}
	if n := len(log.entries); n > 0 && log.entries[n-1].meta.Version > anchor.Version {
		return Meta{}, fmt.Errorf("%w: %s has %d, got %d", ErrVersionOrder, ns, log.entries[n-1].meta.Version, anchor.Version)
	}

	meta := Meta{
		SnapshotID: uuid.NewString(),
		Namespace:  ns,
		Version:    anchor.Version,
		Status:     status,
		CreatedAt:  s.now(),
	}
	e := entry{meta: meta}
	if status == states.StatusSet {
		e.value = cloneValue(value)
	}
	log.entries = append(log.entries, e)
	return meta, nil
}

func (s *MemoryStore) emitCreated(ctx context.Context, anchor states.Anchor, meta Meta) {
	if !s.emitter.Enabled() {
		return
	}
	event := activity.BuildSnapshotCreatedEvent(activity.AnchorEventInput{
		AnchorID:      anchor.ID,
		AnchorName:    anchor.Name,
		AnchorVersion: anchor.Version,
		Namespaces:    []string{string(meta.Namespace)},
		SnapshotID:    meta.SnapshotID,
		OccurredAt:    meta.CreatedAt,
	})
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.Warn("state: activity hook failed", "namespace", string(meta.Namespace), "error", err)
	}
}

func cloneValue(value layering.Map) layering.Map {
	if value == nil {
		return layering.Map{}
	}
	return value.Clone()
}
