// Package state holds the producer side of shared state: a versioned
// in-memory store that implements states.Fetcher, plus a resolver that layers
// several namespaces into one merged value.
//
// Store entries are appended per namespace in non-decreasing version order.
// A fetch for an anchor looks at the entries at or below the anchor version:
//
//	latest Set entry          -> states.StatusSet
//	none, namespace stopped   -> states.StatusNone
//	none otherwise            -> states.StatusPending
//
// Unregistered namespaces always read as states.StatusNone so they never block
// a gate.
//
// Data flow:
//
//	MemoryStore -> Resolver -> states.NewStack(...).Merge(...) -> *states.Combined
package state
