package bufds

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

// sentinel is the index of the list's anchor node. Its links live in the
// header (a = first, b = last) rather than in the node pool.
const sentinel uint32 = math.MaxUint32

// StaticList is a doubly-linked list laid out entirely inside a caller
// buffer: a node pool, a data pool and one used marker per slot. Node i
// always owns data slot i.
type StaticList struct {
	hdr      header
	nodes    []byte
	data     []byte
	used     []byte
	elemSize int
	capacity int
	scrub    bool
	log      logr.Logger
	state    state
}

// NewStaticList formats buf as an empty list of elemSize-byte elements. The
// caller keeps ownership of buf and must not touch it while the list is live.
func NewStaticList(buf []byte, elemSize int, opts ...Option) (*StaticList, error) {
	capacity, err := slotCapacity(len(buf), elemSize, listPerElem(elemSize))
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	h := header(buf[:HeaderSize])
	h.init(kindList, elemSize, capacity)
	l := newStaticList(buf, h, elemSize, capacity, o)
	clear(l.used)
	l.setNext(sentinel, sentinel)
	l.setPrev(sentinel, sentinel)
	o.log.V(1).Info("static list laid out",
		"buffer", len(buf), "elemSize", elemSize, "capacity", capacity)
	return l, nil
}

// AttachStaticList returns a handle to a list previously formatted in buf,
// possibly by another process.
func AttachStaticList(buf []byte, opts ...Option) (*StaticList, error) {
	h, elemSize, capacity, err := attachHeader(buf, kindList, listPerElem)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	l := newStaticList(buf, h, elemSize, capacity, o)
	if err := l.checkLinks(); err != nil {
		return nil, err
	}
	o.log.V(1).Info("static list attached", "elemSize", elemSize, "capacity", capacity, "size", h.size())
	return l, nil
}

// checkLinks walks the chain recorded in the buffer and makes sure it visits
// exactly size used slots, with consistent back links, before returning to the
// sentinel.
func (l *StaticList) checkLinks() error {
	size := l.hdr.size()
	prev := sentinel
	i := l.next(sentinel)
	for n := 0; n < size; n++ {
		if i == sentinel || !l.owns(i) {
			return errors.Wrapf(ErrBadLayout, "link %d of %d points at free slot %d", n, size, i)
		}
		if l.prev(i) != prev {
			return errors.Wrapf(ErrBadLayout, "slot %d links back to %d, not %d", i, l.prev(i), prev)
		}
		prev, i = i, l.next(i)
	}
	if i != sentinel || l.prev(sentinel) != prev {
		return errors.Wrapf(ErrBadLayout, "chain of %d elements does not close on the sentinel", size)
	}
	used := 0
	for _, u := range l.used {
		if u != 0 {
			used++
		}
	}
	if used != size {
		return errors.Wrapf(ErrBadLayout, "%d slots marked used for %d elements", used, size)
	}
	return nil
}

func newStaticList(buf []byte, h header, elemSize, capacity int, o options) *StaticList {
	off := HeaderSize
	nodesEnd := off + capacity*ListNodeSize
	dataEnd := nodesEnd + capacity*elemSize
	usedEnd := dataEnd + capacity
	return &StaticList{
		hdr:      h,
		nodes:    buf[off:nodesEnd:nodesEnd],
		data:     buf[nodesEnd:dataEnd:dataEnd],
		used:     buf[dataEnd:usedEnd:usedEnd],
		elemSize: elemSize,
		capacity: capacity,
		scrub:    o.scrub,
		log:      o.log,
		state:    live,
	}
}

func (l *StaticList) Insert(pos Iterator, elem []byte) error {
	if l.state != live {
		return ErrNotLive
	}
	it, ok := pos.(staticIter)
	if !ok || it.l != l || !l.owns(it.i) {
		return errors.Wrap(ErrBadIterator, "insert")
	}
	return l.insertAfter(l.prev(it.i), elem)
}

func (l *StaticList) PushBack(elem []byte) error {
	if l.state != live {
		return ErrNotLive
	}
	return l.insertAfter(l.prev(sentinel), elem)
}

func (l *StaticList) PushFront(elem []byte) error {
	if l.state != live {
		return ErrNotLive
	}
	return l.insertAfter(sentinel, elem)
}

func (l *StaticList) PopBack() {
	if l.state == live {
		l.remove(l.prev(sentinel))
	}
}

func (l *StaticList) PopFront() {
	if l.state == live {
		l.remove(l.next(sentinel))
	}
}

func (l *StaticList) Clear() {
	if l.state != live {
		return
	}
	for l.hdr.size() > 0 {
		l.remove(l.next(sentinel))
	}
}

// Destroy resets the bookkeeping in the buffer. The buffer itself stays with
// the caller and can be passed to NewStaticList again.
func (l *StaticList) Destroy() {
	if l.state != live {
		return
	}
	l.Clear()
	clear(l.used)
	l.hdr.invalidate()
	l.state = destroyed
	l.log.V(1).Info("static list destroyed", "capacity", l.capacity)
}

func (l *StaticList) Front() []byte {
	if l.state != live || l.hdr.size() == 0 {
		return nil
	}
	return l.slot(l.next(sentinel))
}

func (l *StaticList) Back() []byte {
	if l.state != live || l.hdr.size() == 0 {
		return nil
	}
	return l.slot(l.prev(sentinel))
}

func (l *StaticList) Begin() Iterator {
	if l.state != live {
		return staticIter{}
	}
	return staticIter{l, l.next(sentinel)}
}

func (l *StaticList) End() Iterator {
	if l.state != live {
		return staticIter{}
	}
	return staticIter{l, sentinel}
}

func (l *StaticList) Last() Iterator {
	if l.state != live {
		return staticIter{}
	}
	return staticIter{l, l.prev(sentinel)}
}

func (l *StaticList) Len() int {
	if l.state != live {
		return 0
	}
	return l.hdr.size()
}

func (l *StaticList) Empty() bool   { return l.Len() == 0 }
func (l *StaticList) ElemSize() int { return l.elemSize }
func (l *StaticList) Cap() int      { return l.capacity }
func (l *StaticList) Full() bool    { return l.state == live && l.hdr.size() >= l.capacity }

func (l *StaticList) insertAfter(at uint32, elem []byte) error {
	if l.state != live {
		return ErrNotLive
	}
	if err := checkElem(elem, l.elemSize); err != nil {
		return err
	}
	size := l.hdr.size()
	if size >= l.capacity {
		l.log.V(1).Info("static list full", "capacity", l.capacity)
		return errors.Wrapf(ErrOverflow, "list holds %d elements", l.capacity)
	}
	i, ok := l.allocSlot()
	if !ok {
		return errors.Wrapf(ErrOverflow, "no free slot with %d of %d in use", size, l.capacity)
	}
	copy(l.slot(i), elem)
	next := l.next(at)
	l.setPrev(i, at)
	l.setNext(i, next)
	l.setPrev(next, i)
	l.setNext(at, i)
	l.hdr.setSize(size + 1)
	return nil
}

func (l *StaticList) remove(i uint32) {
	size := l.hdr.size()
	if size == 0 || i == sentinel || !l.owns(i) {
		return
	}
	prev, next := l.prev(i), l.next(i)
	l.setNext(prev, next)
	l.setPrev(next, prev)
	l.freeSlot(i)
	l.hdr.setSize(size - 1)
}

// allocSlot claims the lowest-indexed free slot.
func (l *StaticList) allocSlot() (uint32, bool) {
	for i, u := range l.used {
		if u == 0 {
			l.used[i] = 1
			return uint32(i), true
		}
	}
	return 0, false
}

// freeSlot releases slot i. Indexes outside the pool are ignored.
func (l *StaticList) freeSlot(i uint32) {
	if uint64(i) >= uint64(l.capacity) {
		return
	}
	l.used[i] = 0
	if l.scrub {
		clear(l.slot(i))
		clear(l.nodes[int(i)*ListNodeSize : (int(i)+1)*ListNodeSize])
	}
}

// owns reports whether i is the sentinel or a live node of l.
func (l *StaticList) owns(i uint32) bool {
	if i == sentinel {
		return true
	}
	return uint64(i) < uint64(l.capacity) && l.used[i] != 0
}

func (l *StaticList) slot(i uint32) []byte {
	if i == sentinel {
		return nil
	}
	off := int(i) * l.elemSize
	return l.data[off : off+l.elemSize : off+l.elemSize]
}

func (l *StaticList) next(i uint32) uint32 {
	if i == sentinel {
		return l.hdr.get(offA)
	}
	return le.Uint32(l.nodes[int(i)*ListNodeSize+4:])
}

func (l *StaticList) prev(i uint32) uint32 {
	if i == sentinel {
		return l.hdr.get(offB)
	}
	return le.Uint32(l.nodes[int(i)*ListNodeSize:])
}

func (l *StaticList) setNext(i, to uint32) {
	if i == sentinel {
		l.hdr.set(offA, to)
		return
	}
	le.PutUint32(l.nodes[int(i)*ListNodeSize+4:], to)
}

func (l *StaticList) setPrev(i, to uint32) {
	if i == sentinel {
		l.hdr.set(offB, to)
		return
	}
	le.PutUint32(l.nodes[int(i)*ListNodeSize:], to)
}

// staticIter is an index handle into a StaticList's node pool.
type staticIter struct {
	l *StaticList
	i uint32
}

func (it staticIter) Data() []byte {
	if it.l == nil || !it.l.owns(it.i) {
		return nil
	}
	return it.l.slot(it.i)
}

func (it staticIter) Next() Iterator {
	if it.l == nil || !it.l.owns(it.i) {
		return it
	}
	return staticIter{it.l, it.l.next(it.i)}
}

func (it staticIter) Prev() Iterator {
	if it.l == nil || !it.l.owns(it.i) {
		return it
	}
	return staticIter{it.l, it.l.prev(it.i)}
}

func (it staticIter) Forward(n int) Iterator  { return step(it, n) }
func (it staticIter) Backward(n int) Iterator { return step(it, -n) }
