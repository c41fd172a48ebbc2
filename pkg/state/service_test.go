package state_test

import (
	"context"
	"errors"
	"testing"

	states "github.com/goliatone/go-states"
	"github.com/goliatone/go-states/pkg/state"
)

func TestDecodeRequest(t *testing.T) {
	req, err := state.DecodeRequest(map[string]any{
		"namespace": " com.example.cart ",
		"statedata": map[string]any{"items": 2},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Namespace != "com.example.cart" || !req.IsSet() {
		t.Fatalf("unexpected request %+v", req)
	}

	req, err = state.DecodeRequest(map[string]any{"namespace": "cart", "statedata": "oops"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.IsSet() {
		t.Fatalf("expected non-map statedata to make a read request")
	}

	if _, err := state.DecodeRequest(map[string]any{"statedata": map[string]any{}}); !errors.Is(err, states.ErrNamespaceRequired) {
		t.Fatalf("expected ErrNamespaceRequired, got %v", err)
	}
}

func TestServiceSetThenGet(t *testing.T) {
	ctx := context.Background()
	service := state.NewService(state.NewMemoryStore(), nil)

	value, responded, err := service.Handle(ctx, anchorAt(1), map[string]any{
		"namespace": "cart",
		"statedata": map[string]any{"items": 2, "currency": "EUR"},
	})
	if err != nil || responded || value != nil {
		t.Fatalf("expected silent write, got %v %v %v", value, responded, err)
	}

	value, responded, err = service.Handle(ctx, anchorAt(2), map[string]any{"namespace": "cart"})
	if err != nil || !responded {
		t.Fatalf("expected read response, got %v %v", responded, err)
	}
	if currency, _ := value["currency"].AsString(); currency != "EUR" {
		t.Fatalf("unexpected value %v", value)
	}

	empty := service.Get("unknown", anchorAt(2))
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty map for unknown namespace, got %v", empty)
	}
}

func TestServiceIgnoresEmptyPayload(t *testing.T) {
	service := state.NewService(state.NewMemoryStore(), nil)
	value, responded, err := service.Handle(context.Background(), anchorAt(1), nil)
	if value != nil || responded || err != nil {
		t.Fatalf("expected nil payload to be ignored, got %v %v %v", value, responded, err)
	}
	if _, _, err := service.Handle(context.Background(), anchorAt(1), map[string]any{"statedata": map[string]any{}}); err == nil {
		t.Fatalf("expected missing namespace to fail")
	}
}
