// core/priority.go
package core

import "container/heap"

type entry struct {
	priority uint32
	id       int
}

// priorityQueue is a max-heap on priority; equal priorities pop lower id first.
type priorityQueue []entry

func (q priorityQueue) Len() int { return len(q) }

func (q priorityQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].id < q[j].id
}

func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *priorityQueue) Push(x any) { *q = append(*q, x.(entry)) }

func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func (q *priorityQueue) push(e entry) { heap.Push(q, e) }

func (q *priorityQueue) pop() (entry, bool) {
	if q.Len() == 0 {
		return entry{}, false
	}
	return heap.Pop(q).(entry), true
}

func (q priorityQueue) peek() (entry, bool) {
	if len(q) == 0 {
		return entry{}, false
	}
	return q[0], true
}

func (q *priorityQueue) reset() { *q = (*q)[:0] }
