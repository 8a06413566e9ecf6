package bufds

import (
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

type dnode struct {
	data       []byte
	prev, next *dnode
	list       *DynamicList // nil once the node is removed
}

// DynamicList is a circular doubly-linked list around a sentinel node. Each
// element gets its own node and storage from the list's Allocator.
type DynamicList struct {
	root     dnode // sentinel; root.data is always nil
	size     int
	elemSize int
	alloc    Allocator
	log      logr.Logger
	state    state
}

func NewDynamicList(elemSize int, opts ...Option) (*DynamicList, error) {
	if elemSize <= 0 {
		return nil, errors.Wrapf(ErrFailure, "invalid element size %d", elemSize)
	}
	o := buildOptions(opts)
	l := &DynamicList{
		elemSize: elemSize,
		alloc:    o.alloc,
		log:      o.log,
		state:    live,
	}
	l.root.prev, l.root.next, l.root.list = &l.root, &l.root, l
	l.log.V(1).Info("dynamic list created", "elemSize", elemSize)
	return l, nil
}

func (l *DynamicList) Insert(pos Iterator, elem []byte) error {
	if l.state != live {
		return ErrNotLive
	}
	it, ok := pos.(dynamicIter)
	if !ok || it.n == nil || it.n.list != l {
		return errors.Wrap(ErrBadIterator, "insert")
	}
	return l.insertAfter(it.n.prev, elem)
}

func (l *DynamicList) PushBack(elem []byte) error {
	if l.state != live {
		return ErrNotLive
	}
	return l.insertAfter(l.root.prev, elem)
}

func (l *DynamicList) PushFront(elem []byte) error {
	if l.state != live {
		return ErrNotLive
	}
	return l.insertAfter(&l.root, elem)
}

func (l *DynamicList) PopBack() {
	if l.state == live {
		l.remove(l.root.prev)
	}
}

func (l *DynamicList) PopFront() {
	if l.state == live {
		l.remove(l.root.next)
	}
}

func (l *DynamicList) Clear() {
	if l.state != live {
		return
	}
	for l.size > 0 {
		l.remove(l.root.next)
	}
}

// Destroy frees every node. The list accepts no further operations.
func (l *DynamicList) Destroy() {
	if l.state != live {
		return
	}
	l.Clear()
	l.root.prev, l.root.next, l.root.list = nil, nil, nil
	l.state = destroyed
	l.log.V(1).Info("dynamic list destroyed")
}

func (l *DynamicList) Front() []byte {
	if l.state != live {
		return nil
	}
	return l.root.next.data
}

func (l *DynamicList) Back() []byte {
	if l.state != live {
		return nil
	}
	return l.root.prev.data
}

func (l *DynamicList) Begin() Iterator {
	if l.state != live {
		return dynamicIter{}
	}
	return dynamicIter{l.root.next}
}

func (l *DynamicList) End() Iterator {
	if l.state != live {
		return dynamicIter{}
	}
	return dynamicIter{&l.root}
}

func (l *DynamicList) Last() Iterator {
	if l.state != live {
		return dynamicIter{}
	}
	return dynamicIter{l.root.prev}
}

func (l *DynamicList) Len() int      { return l.size }
func (l *DynamicList) Empty() bool   { return l.size == 0 }
func (l *DynamicList) ElemSize() int { return l.elemSize }

func (l *DynamicList) insertAfter(at *dnode, elem []byte) error {
	if l.state != live {
		return ErrNotLive
	}
	if err := checkElem(elem, l.elemSize); err != nil {
		return err
	}
	data, err := l.alloc.Alloc(l.elemSize)
	if err != nil {
		l.log.V(1).Info("list node allocation failed", "size", l.size, "err", err)
		return err
	}
	copy(data, elem)
	n := &dnode{data: data, prev: at, next: at.next, list: l}
	at.next.prev = n
	at.next = n
	l.size++
	return nil
}

// remove unlinks n and hands its storage back to the allocator. Removing from
// an empty list, or removing the sentinel, does nothing.
func (l *DynamicList) remove(n *dnode) {
	if l.size == 0 || n == &l.root || n.list != l {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	l.alloc.Free(n.data)
	n.data, n.prev, n.next, n.list = nil, nil, nil, nil
	l.size--
}

type dynamicIter struct{ n *dnode }

func (it dynamicIter) Data() []byte {
	if it.n == nil {
		return nil
	}
	return it.n.data
}

func (it dynamicIter) Next() Iterator {
	if it.n == nil || it.n.next == nil {
		return it
	}
	return dynamicIter{it.n.next}
}

func (it dynamicIter) Prev() Iterator {
	if it.n == nil || it.n.prev == nil {
		return it
	}
	return dynamicIter{it.n.prev}
}

func (it dynamicIter) Forward(n int) Iterator  { return step(it, n) }
func (it dynamicIter) Backward(n int) Iterator { return step(it, -n) }
