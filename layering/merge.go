package layering

import (
	"sort"
	"strings"
)

// AttachSuffix marks a key whose map value is merged into every map element
// of the sibling list named by the key without the suffix.
const AttachSuffix = "[*]"

// MergeOverwrite merges overlay into base in place. base must not be nil.
//
// Overlay values win on conflict; nested maps present on both sides are merged
// recursively. After the overwrite pass, keys ending in AttachSuffix are applied
// to their sibling list (or, when the overlay set them to null, null out the
// sibling entirely). When pruneEmpty is set, null values are removed after
// nested maps have been normalised the same way.
//
// overlay is never mutated; values taken from it are deep copied into base.
func MergeOverwrite(base, overlay Map, pruneEmpty bool) {
	for key, incoming := range overlay {
		current, exists := base[key]
		if exists {
			currentMap, baseIsMap := current.AsMap()
			incomingMap, overlayIsMap := incoming.AsMap()
			if baseIsMap && overlayIsMap {
				MergeOverwrite(currentMap, incomingMap, pruneEmpty)
				continue
			}
		}
		base[key] = incoming.Clone()
	}

	for _, key := range sortedKeys(base) {
		if strings.HasSuffix(key, AttachSuffix) {
			attach(base, overlay, key, pruneEmpty)
			continue
		}
		if !pruneEmpty {
			continue
		}
		if nested, ok := base[key].AsMap(); ok {
			MergeOverwrite(nested, nil, pruneEmpty)
		}
	}

	if pruneEmpty {
		for key, value := range base {
			if value.IsNull() {
				delete(base, key)
			}
		}
	}
}

func attach(base, overlay Map, key string, pruneEmpty bool) {
	target := strings.TrimSuffix(key, AttachSuffix)
	receivers, exists := base[target]
	if !exists {
		return
	}

	if incoming, set := overlay[key]; set && incoming.IsNull() {
		base[target] = Null()
		delete(base, key)
		return
	}

	items, ok := receivers.AsList()
	if !ok {
		return
	}
	payload, isMap := base[key].AsMap()
	for i, item := range items {
		element, ok := item.AsMap()
		if !ok || !isMap {
			continue
		}
		MergeOverwrite(element, payload, pruneEmpty)
		items[i] = MapOf(element)
	}
	base[target] = ListOf(items...)
	delete(base, key)
}

// MergeLayers composes layers ordered from strongest to weakest, returning a
// new Map that keeps explicit values from stronger layers while filling any
// missing data from weaker ones. Inputs are not modified.
func MergeLayers(pruneEmpty bool, layers ...Map) Map {
	if len(layers) == 0 {
		return Map{}
	}

	merged := layers[len(layers)-1].Clone()
	if merged == nil {
		merged = Map{}
	}
	if pruneEmpty {
		MergeOverwrite(merged, nil, true)
	}
	for i := len(layers) - 2; i >= 0; i-- {
		MergeOverwrite(merged, layers[i], pruneEmpty)
	}
	return merged
}

func sortedKeys(m Map) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
