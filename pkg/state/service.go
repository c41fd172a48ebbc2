package state

import (
	"context"
	"fmt"
	"strings"

	states "github.com/goliatone/go-states"
	"github.com/goliatone/go-states/internal/hydrate"
	"github.com/goliatone/go-states/layering"
)

// Request payload keys.
const (
	KeyNamespace = "namespace"
	KeyStateData = "statedata"
)

// Request is a namespaced shared state request. A request carrying StateData
// sets state; one without it reads state.
type Request struct {
	Namespace string         `json:"namespace"`
	StateData map[string]any `json:"statedata,omitempty"`
}

// IsSet reports whether the request writes state.
func (r Request) IsSet() bool {
	return r.StateData != nil
}

var requestDecoder = hydrate.NewDecoder[Request](
	hydrate.WithPreHook[Request](dropNonMapStateData),
	hydrate.WithPostHook[Request](requireNamespace),
)

// DecodeRequest reads a request from loosely typed event data. A statedata
// value that is not a map is ignored, turning the request into a read.
func DecodeRequest(data map[string]any) (Request, error) {
	return requestDecoder.Decode(hydrate.Context{Kind: "request"}, data)
}

func dropNonMapStateData(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	if raw, ok := payload[KeyStateData]; ok {
		if _, isMap := raw.(map[string]any); !isMap {
			delete(payload, KeyStateData)
		}
	}
	return payload, nil
}

func requireNamespace(_ hydrate.Context, req *Request) error {
	req.Namespace = strings.TrimSpace(req.Namespace)
	if req.Namespace == "" {
		return states.ErrNamespaceRequired
	}
	return nil
}

// Service answers namespaced get and set requests against a MemoryStore.
// Namespaces are registered on first write.
type Service struct {
	store  *MemoryStore
	logger states.Logger
}

// NewService wraps store.
func NewService(store *MemoryStore, logger states.Logger) *Service {
	if logger == nil {
		logger = states.NopLogger()
	}
	return &Service{store: store, logger: logger}
}

// Set records data for ns at anchor.
func (s *Service) Set(ctx context.Context, ns states.Namespace, data layering.Map, anchor states.Anchor) (Meta, error) {
	if s == nil || s.store == nil {
		return Meta{}, fmt.Errorf("state: store is required")
	}
	if err := s.store.Register(ns); err != nil {
		return Meta{}, err
	}
	return s.store.Create(ctx, ns, data, anchor)
}

// Get returns the value of ns for anchor, or an empty map when the namespace
// has nothing set.
func (s *Service) Get(ns states.Namespace, anchor states.Anchor) layering.Map {
	if s == nil || s.store == nil {
		return layering.Map{}
	}
	snapshot := s.store.Fetch(ns, anchor)
	if !snapshot.IsSet() {
		return layering.Map{}
	}
	return snapshot.Value
}

// Handle decodes payload and serves it. Reads return the namespace value and
// true; writes return nil and false.
func (s *Service) Handle(ctx context.Context, anchor states.Anchor, payload map[string]any) (layering.Map, bool, error) {
	if payload == nil {
		s.logger.Debug("state: request contains no data, ignoring", "anchor", anchor.Label())
		return nil, false, nil
	}
	req, err := DecodeRequest(payload)
	if err != nil {
		s.logger.Debug("state: invalid request, ignoring", "anchor", anchor.Label(), "error", err)
		return nil, false, err
	}
	ns := states.Namespace(req.Namespace)
	if req.IsSet() {
		if _, err := s.Set(ctx, ns, layering.FromMap(req.StateData), anchor); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return s.Get(ns, anchor), true, nil
}
