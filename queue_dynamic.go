package bufds

import (
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

type qnode struct {
	data []byte
	next *qnode
}

// DynamicQueue is a singly-linked FIFO with a permanent dummy head. The
// front element is the node after the dummy.
type DynamicQueue struct {
	front    *qnode // dummy
	rear     *qnode
	size     int
	elemSize int
	alloc    Allocator
	log      logr.Logger
	state    state
}

func NewDynamicQueue(elemSize int, opts ...Option) (*DynamicQueue, error) {
	if elemSize <= 0 {
		return nil, errors.Wrapf(ErrFailure, "invalid element size %d", elemSize)
	}
	o := buildOptions(opts)
	filler, err := o.alloc.Alloc(elemSize)
	if err != nil {
		return nil, errors.Wrap(err, "allocating queue head")
	}
	dummy := &qnode{data: filler}
	o.log.V(1).Info("dynamic queue created", "elemSize", elemSize)
	return &DynamicQueue{
		front:    dummy,
		rear:     dummy,
		elemSize: elemSize,
		alloc:    o.alloc,
		log:      o.log,
		state:    live,
	}, nil
}

// Push appends elem, copying it with cp when cp is not nil.
func (q *DynamicQueue) Push(elem []byte, cp CopyFunc) error {
	if q.state != live {
		return ErrNotLive
	}
	if err := checkElem(elem, q.elemSize); err != nil {
		return err
	}
	data, err := q.alloc.Alloc(q.elemSize)
	if err != nil {
		q.log.V(1).Info("queue node allocation failed", "size", q.size, "err", err)
		return err
	}
	copyElem(data, elem, cp)
	n := &qnode{data: data}
	q.rear.next = n
	q.rear = n
	q.size++
	return nil
}

func (q *DynamicQueue) Pop() error {
	if q.state != live {
		return ErrNotLive
	}
	if q.size == 0 {
		return errors.Wrap(ErrEmpty, "pop")
	}
	p := q.front.next
	q.front.next = p.next
	if q.rear == p {
		q.rear = q.front
	}
	q.alloc.Free(p.data)
	p.data, p.next = nil, nil
	q.size--
	return nil
}

func (q *DynamicQueue) Clear() {
	for q.state == live && q.size > 0 {
		_ = q.Pop()
	}
}

func (q *DynamicQueue) Destroy() {
	if q.state != live {
		return
	}
	q.Clear()
	q.alloc.Free(q.front.data)
	q.front, q.rear = nil, nil
	q.state = destroyed
	q.log.V(1).Info("dynamic queue destroyed")
}

// Front returns the oldest element, or nil when the queue is empty.
func (q *DynamicQueue) Front() []byte {
	if q.state != live || q.size == 0 {
		return nil
	}
	return q.front.next.data
}

// Rear returns the newest element, or nil when the queue is empty.
func (q *DynamicQueue) Rear() []byte {
	if q.state != live || q.size == 0 {
		return nil
	}
	return q.rear.data
}

func (q *DynamicQueue) Len() int      { return q.size }
func (q *DynamicQueue) Empty() bool   { return q.size == 0 }
func (q *DynamicQueue) ElemSize() int { return q.elemSize }
