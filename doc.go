// Package states aggregates per-namespace shared state for an anchor event.
//
// Producers (extensions) publish snapshots of their state into namespaces.
// For a given Anchor each namespace is either pending, set or none. The
// package provides three building blocks:
//
//   - Gate / IsReady decides whether every namespace an aggregation depends on
//     has resolved for the anchor.
//   - layering.MergeOverwrite overlays nested maps, with `key[*]` attaching a
//     map to every element of a list and null values pruned.
//   - Aggregator[R] folds an ordered rule table over the namespace snapshots
//     and produces records.
//
// Pipeline ties a Gate to an aggregation and reports each run through the
// activity hooks in pkg/activity.
//
// Data flow:
//
//	Fetcher -> Gate.Ready -> Aggregator.Collect -> records
//
// Rules can be plain Go projections or compiled expressions (expr, CEL, and
// goja behind the js_eval build tag), see ExpressionRule.
package states
