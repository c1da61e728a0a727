package view

import (
	"iter"
	"math"
)

// Window is a half-open range [Start, End) of item indices to render.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of indices in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// Indices yields Start through End-1. The sequence is lazy and may be
// ranged over any number of times.
func (w Window) Indices() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := w.Start; i < w.End; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// VisibleWindow computes which items of a fixed-height list intersect the
// viewport, widened by overscan items on each side and clamped to
// [0, itemCount). Non-finite or negative inputs are treated as zero.
func VisibleWindow(scrollOffset, viewportSize, itemSize float64, itemCount, overscan int) Window {
	if itemCount <= 0 || !(itemSize > 0) || math.IsInf(itemSize, 0) {
		return Window{}
	}
	scrollOffset = sanitize(scrollOffset)
	viewportSize = sanitize(viewportSize)
	overscan = max(overscan, 0)

	n := float64(itemCount)
	first := math.Min(math.Floor(scrollOffset/itemSize), n)
	last := math.Min(math.Ceil((scrollOffset+viewportSize)/itemSize), n)

	start := max(int(first)-overscan, 0)
	end := min(int(last)+overscan, itemCount)
	if end < start {
		end = start
	}
	return Window{Start: start, End: end}
}

// Slice returns the items that fall inside w.
func Slice[T any](items []T, w Window) []T {
	start := min(max(w.Start, 0), len(items))
	end := min(max(w.End, start), len(items))
	return items[start:end]
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
