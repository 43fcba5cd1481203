// Package sizeof approximates the heap footprint of arbitrary values.
//
// The estimator runs on the hot Set path of the cache, so it trades
// precision for a hard cost ceiling: large containers are sampled rather
// than fully walked, recursion depth is capped, and cyclic structures are
// detected by pointer identity. Results are advisory — they feed the
// cache's memory budget, not an allocator.
package sizeof

import (
	"reflect"
	"unicode/utf8"
)

const (
	boolSize   = 4
	numberSize = 8
	wordSize   = 8

	// stringOverhead covers the string header plus allocator slack.
	stringOverhead = 16
	// containerOverhead covers slice/map headers and bucket bookkeeping.
	containerOverhead = 48

	// sampleThreshold is the container length up to which every element
	// is measured. Longer containers are sampled and extrapolated.
	sampleThreshold = 10
	// samplePerRegion elements are taken from the start, middle, and end
	// of an indexable container (3 regions).
	samplePerRegion = 3

	// maxDepth bounds recursion; nesting beyond it costs a flat default.
	maxDepth        = 5
	deepDefaultSize = 64

	// MaxValueSize is the per-value ceiling. One pathological value must
	// not appear to consume the whole memory budget.
	MaxValueSize = 8 << 20
)

// Estimate returns an approximate heap size of v in bytes.
// It is pure, never panics on cyclic graphs, and terminates in bounded
// time regardless of the size or shape of v.
func Estimate(v any) uint64 {
	if v == nil {
		return wordSize
	}
	seen := make(map[uintptr]struct{})
	n := estimateValue(reflect.ValueOf(v), 0, seen)
	if n > MaxValueSize {
		return MaxValueSize
	}
	return n
}

func estimateValue(rv reflect.Value, depth int, seen map[uintptr]struct{}) uint64 {
	if !rv.IsValid() {
		return wordSize
	}
	if depth > maxDepth {
		return deepDefaultSize
	}

	switch rv.Kind() {
	case reflect.Bool:
		return boolSize

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64:
		return numberSize

	case reflect.Complex64, reflect.Complex128:
		return 2 * numberSize

	case reflect.String:
		// 2 bytes per rune approximates wide in-memory encodings and
		// stays stable across ASCII and multibyte content.
		return stringOverhead + 2*uint64(utf8.RuneCountInString(rv.String()))

	case reflect.Pointer:
		if rv.IsNil() {
			return wordSize
		}
		if visited(rv.Pointer(), seen) {
			return wordSize
		}
		return wordSize + estimateValue(rv.Elem(), depth+1, seen)

	case reflect.Interface:
		if rv.IsNil() {
			return wordSize
		}
		return wordSize + estimateValue(rv.Elem(), depth+1, seen)

	case reflect.Slice:
		if rv.IsNil() {
			return containerOverhead
		}
		if visited(rv.Pointer(), seen) {
			return wordSize
		}
		return containerOverhead + estimateIndexed(rv, depth, seen)

	case reflect.Array:
		return estimateIndexed(rv, depth, seen)

	case reflect.Map:
		if rv.IsNil() {
			return containerOverhead
		}
		if visited(rv.Pointer(), seen) {
			return wordSize
		}
		return containerOverhead + estimateMap(rv, depth, seen)

	case reflect.Struct:
		total := uint64(0)
		for i := 0; i < rv.NumField(); i++ {
			total += estimateValue(rv.Field(i), depth+1, seen)
		}
		return total

	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return wordSize

	default:
		return wordSize
	}
}

// estimateIndexed measures a slice or array. Short containers are walked
// fully; long ones are sampled from three regions and extrapolated so the
// cost is O(samples) no matter the length.
func estimateIndexed(rv reflect.Value, depth int, seen map[uintptr]struct{}) uint64 {
	n := rv.Len()
	if n == 0 {
		return 0
	}
	if n <= sampleThreshold {
		total := uint64(0)
		for i := 0; i < n; i++ {
			total += estimateValue(rv.Index(i), depth+1, seen)
		}
		return total
	}

	idxs := sampleIndexes(n)
	total := uint64(0)
	for _, i := range idxs {
		total += estimateValue(rv.Index(i), depth+1, seen)
	}
	avg := total / uint64(len(idxs))
	return avg * uint64(n)
}

// estimateMap measures up to 3*samplePerRegion entries and extrapolates.
// Map iteration order is randomized, so the sample is effectively random.
func estimateMap(rv reflect.Value, depth int, seen map[uintptr]struct{}) uint64 {
	n := rv.Len()
	if n == 0 {
		return 0
	}

	limit := n
	if n > sampleThreshold {
		limit = 3 * samplePerRegion
	}

	total := uint64(0)
	counted := 0
	iter := rv.MapRange()
	for iter.Next() && counted < limit {
		total += estimateValue(iter.Key(), depth+1, seen)
		total += estimateValue(iter.Value(), depth+1, seen)
		counted++
	}
	if counted == 0 {
		return 0
	}
	if counted == n {
		return total
	}
	avg := total / uint64(counted)
	return avg * uint64(n)
}

// sampleIndexes picks samplePerRegion indexes from the start, middle, and
// end of a container of length n (n > sampleThreshold). Duplicates are
// impossible because the regions cannot overlap at that length.
func sampleIndexes(n int) []int {
	idxs := make([]int, 0, 3*samplePerRegion)
	for i := 0; i < samplePerRegion; i++ {
		idxs = append(idxs, i)
	}
	mid := n / 2
	for i := 0; i < samplePerRegion; i++ {
		idxs = append(idxs, mid-1+i)
	}
	for i := n - samplePerRegion; i < n; i++ {
		idxs = append(idxs, i)
	}
	return idxs
}

// visited records ptr in seen and reports whether it was already there.
// The set is scoped to a single Estimate call, so there is no persistent
// state and no leak across calls.
func visited(ptr uintptr, seen map[uintptr]struct{}) bool {
	if _, ok := seen[ptr]; ok {
		return true
	}
	seen[ptr] = struct{}{}
	return false
}
