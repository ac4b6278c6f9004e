// Package rank provides a bounded selector that retains the k smallest
// values observed over a stream without sorting the whole stream.
package rank

import "container/heap"

// Smallest keeps the capacity smallest int64 values offered so far. The
// retained set is a max-oriented heap, so membership tests and replacement
// cost O(log capacity) per offer. A zero capacity retains nothing.
type Smallest struct {
	capacity int
	values   maxHeap
}

// NewSmallest returns a selector retaining at most capacity values.
// Negative capacities are treated as zero.
func NewSmallest(capacity int) *Smallest {
	if capacity < 0 {
		capacity = 0
	}
	return &Smallest{
		capacity: capacity,
		values:   make(maxHeap, 0, capacity),
	}
}

// Offer considers v for the retained set. Once at capacity, v replaces the
// current boundary only when it is smaller.
func (s *Smallest) Offer(v int64) {
	if s.capacity == 0 {
		return
	}
	if len(s.values) < s.capacity {
		heap.Push(&s.values, v)
		return
	}
	if v < s.values[0] {
		s.values[0] = v
		heap.Fix(&s.values, 0)
	}
}

// Boundary returns the largest value among the retained smallest set: the
// newest value within the oldest k. ok is false when nothing is retained,
// which callers must treat as "no boundary" rather than zero.
func (s *Smallest) Boundary() (boundary int64, ok bool) {
	if len(s.values) == 0 {
		return 0, false
	}
	return s.values[0], true
}

// Len reports how many values are currently retained.
func (s *Smallest) Len() int { return len(s.values) }

type maxHeap []int64

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(int64)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
