package board

import "slices"

// Reorder moves the element at from to position to, where to is measured against
// the sequence after removal. The input is never mutated. An out-of-range from
// returns an unchanged copy; to is clamped into [0, len(seq)-1].
func Reorder[T any](seq []T, from, to int) []T {
	out := slices.Clone(seq)
	if from < 0 || from >= len(seq) {
		return nonNil(out)
	}
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, clamp(to, 0, len(out)), item)
}

// MoveBetween removes src[from] and inserts it into dst at to. Both inputs stay
// untouched; the returned slices are fresh. An out-of-range from returns unchanged
// copies; to is clamped into [0, len(dst)].
func MoveBetween[T any](src, dst []T, from, to int) ([]T, []T) {
	nextSrc := slices.Clone(src)
	nextDst := slices.Clone(dst)
	if from < 0 || from >= len(src) {
		return nonNil(nextSrc), nonNil(nextDst)
	}
	item := nextSrc[from]
	nextSrc = slices.Delete(nextSrc, from, from+1)
	nextDst = slices.Insert(nextDst, clamp(to, 0, len(nextDst)), item)
	return nonNil(nextSrc), nextDst
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
