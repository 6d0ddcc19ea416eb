package scheduler

import (
	"container/list"

	"github.com/viant/procsim/model/process"
)

// readyQueue is a FIFO of ready processes with per-id handles for O(1) removal
type readyQueue struct {
	items   *list.List
	handles map[int]*list.Element
}

func newReadyQueue() *readyQueue {
	return &readyQueue{items: list.New(), handles: make(map[int]*list.Element)}
}

func (q *readyQueue) pushBack(p *process.Process) {
	q.handles[p.ID] = q.items.PushBack(p)
}

func (q *readyQueue) popFront() *process.Process {
	front := q.items.Front()
	if front == nil {
		return nil
	}
	p := q.items.Remove(front).(*process.Process)
	delete(q.handles, p.ID)
	return p
}

func (q *readyQueue) remove(id int) bool {
	elem, ok := q.handles[id]
	if !ok {
		return false
	}
	q.items.Remove(elem)
	delete(q.handles, id)
	return true
}

func (q *readyQueue) contains(id int) bool {
	_, ok := q.handles[id]
	return ok
}

func (q *readyQueue) len() int {
	return q.items.Len()
}

// ids returns the queued ids from head to tail
func (q *readyQueue) ids() []int {
	ret := make([]int, 0, q.items.Len())
	for e := q.items.Front(); e != nil; e = e.Next() {
		ret = append(ret, e.Value.(*process.Process).ID)
	}
	return ret
}
