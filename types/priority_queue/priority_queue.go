package priority_queue

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Item is a single entry in a Queue: a value together with the priority
// it was pushed at.
type Item[V any, P constraints.Ordered] struct {
	object   V
	priority P
	index    int
}

type wrapper[V any, P constraints.Ordered] []*Item[V, P]

// Queue is a priority queue with MINIMUM priority on top, used by the
// table package to keep PIT and CS entries ordered by last activity.
type Queue[V any, P constraints.Ordered] struct {
	pq wrapper[V, P]
}

// Len returns the number of elements currently in the heap.
func (pq *wrapper[V, P]) Len() int {
	return len(*pq)
}

// Less reports whether the element at i has a smaller priority than j.
func (pq *wrapper[V, P]) Less(i, j int) bool {
	return (*pq)[i].priority < (*pq)[j].priority
}

// Swap exchanges the elements at i and j and keeps their stored heap
// indices consistent.
func (pq *wrapper[V, P]) Swap(i, j int) {
	(*pq)[i], (*pq)[j] = (*pq)[j], (*pq)[i]
	(*pq)[i].index = i
	(*pq)[j].index = j
}

// Push appends x (asserted to *Item[V, P]) to the heap slice.
func (pq *wrapper[V, P]) Push(x any) {
	item := x.(*Item[V, P])
	item.index = len(*pq)
	*pq = append(*pq, item)
}

// Pop removes and returns the last element of the heap slice.
func (pq *wrapper[V, P]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// Len returns the number of elements in the queue.
func (pq *Queue[V, P]) Len() int {
	return pq.pq.Len()
}

// Push inserts value at the given priority and returns the created Item
// so its priority can later be updated in place.
func (pq *Queue[V, P]) Push(value V, priority P) *Item[V, P] {
	ret := &Item[V, P]{object: value, priority: priority}
	heap.Push(&pq.pq, ret)
	return ret
}

// Peek returns the minimum-priority element without removing it.
func (pq *Queue[V, P]) Peek() V {
	return pq.pq[0].object
}

// PeekPriority returns the minimum element's priority.
func (pq *Queue[V, P]) PeekPriority() P {
	return pq.pq[0].priority
}

// Pop removes and returns the minimum-priority element.
func (pq *Queue[V, P]) Pop() V {
	return heap.Pop(&pq.pq).(*Item[V, P]).object
}

// Remove deletes item from the queue regardless of its position.
func (pq *Queue[V, P]) Remove(item *Item[V, P]) {
	if item.index < 0 || item.index >= pq.pq.Len() {
		return
	}
	heap.Remove(&pq.pq, item.index)
}

// UpdatePriority changes item's priority and restores the heap invariant.
func (pq *Queue[V, P]) UpdatePriority(item *Item[V, P], priority P) {
	item.priority = priority
	heap.Fix(&pq.pq, item.index)
}

// Value returns the value held by item.
func (item *Item[V, P]) Value() V {
	return item.object
}

// New creates an empty priority queue. Not required to call on the zero
// value of Queue.
func New[V any, P constraints.Ordered]() Queue[V, P] {
	return Queue[V, P]{wrapper[V, P]{}}
}
