package bufds

import (
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

// StaticQueue is a ring buffer laid out inside a caller buffer. Head and tail
// wrap modulo the capacity; the explicit size tells a full ring from an empty
// one without giving up a slot.
type StaticQueue struct {
	hdr      header
	data     []byte
	elemSize int
	capacity int
	scrub    bool
	log      logr.Logger
	state    state
}

func NewStaticQueue(buf []byte, elemSize int, opts ...Option) (*StaticQueue, error) {
	capacity, err := slotCapacity(len(buf), elemSize, poolPerElem(elemSize))
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	h := header(buf[:HeaderSize])
	h.init(kindQueue, elemSize, capacity)
	o.log.V(1).Info("static queue laid out",
		"buffer", len(buf), "elemSize", elemSize, "capacity", capacity)
	return newStaticQueue(buf, h, elemSize, capacity, o), nil
}

// AttachStaticQueue returns a handle to a queue previously formatted in buf.
func AttachStaticQueue(buf []byte, opts ...Option) (*StaticQueue, error) {
	h, elemSize, capacity, err := attachHeader(buf, kindQueue, poolPerElem)
	if err != nil {
		return nil, err
	}
	if h.get(offA) >= uint32(capacity) || h.get(offB) >= uint32(capacity) {
		return nil, errors.Wrapf(ErrBadLayout, "ring indexes %d/%d over capacity %d",
			h.get(offA), h.get(offB), capacity)
	}
	o := buildOptions(opts)
	o.log.V(1).Info("static queue attached", "elemSize", elemSize, "capacity", capacity, "size", h.size())
	return newStaticQueue(buf, h, elemSize, capacity, o), nil
}

func newStaticQueue(buf []byte, h header, elemSize, capacity int, o options) *StaticQueue {
	end := HeaderSize + capacity*elemSize
	return &StaticQueue{
		hdr:      h,
		data:     buf[HeaderSize:end:end],
		elemSize: elemSize,
		capacity: capacity,
		scrub:    o.scrub,
		log:      o.log,
		state:    live,
	}
}

// Push writes elem at the tail, copying it with cp when cp is not nil.
func (q *StaticQueue) Push(elem []byte, cp CopyFunc) error {
	if q.state != live {
		return ErrNotLive
	}
	if err := checkElem(elem, q.elemSize); err != nil {
		return err
	}
	size := q.hdr.size()
	if size >= q.capacity {
		q.log.V(1).Info("static queue full", "capacity", q.capacity)
		return errors.Wrapf(ErrOverflow, "queue holds %d elements", q.capacity)
	}
	tail := q.hdr.get(offB)
	copyElem(q.slot(tail), elem, cp)
	q.hdr.set(offB, q.wrap(uint64(tail)+1))
	q.hdr.setSize(size + 1)
	return nil
}

func (q *StaticQueue) Pop() error {
	if q.state != live {
		return ErrNotLive
	}
	size := q.hdr.size()
	if size == 0 {
		return errors.Wrap(ErrEmpty, "pop")
	}
	head := q.hdr.get(offA)
	if q.scrub {
		clear(q.slot(head))
	}
	q.hdr.set(offA, q.wrap(uint64(head)+1))
	q.hdr.setSize(size - 1)
	return nil
}

func (q *StaticQueue) Clear() {
	if q.state != live {
		return
	}
	q.hdr.setSize(0)
	q.hdr.set(offA, 0)
	q.hdr.set(offB, 0)
	if q.scrub {
		clear(q.data)
	}
}

// Destroy resets the bookkeeping in the buffer. The buffer stays with the
// caller.
func (q *StaticQueue) Destroy() {
	if q.state != live {
		return
	}
	q.Clear()
	q.hdr.invalidate()
	q.state = destroyed
	q.log.V(1).Info("static queue destroyed", "capacity", q.capacity)
}

func (q *StaticQueue) Front() []byte {
	if q.state != live || q.hdr.size() == 0 {
		return nil
	}
	return q.slot(q.hdr.get(offA))
}

func (q *StaticQueue) Rear() []byte {
	if q.state != live || q.hdr.size() == 0 {
		return nil
	}
	tail := q.hdr.get(offB)
	return q.slot(q.wrap(uint64(tail) + uint64(q.capacity) - 1))
}

func (q *StaticQueue) Len() int {
	if q.state != live {
		return 0
	}
	return q.hdr.size()
}

func (q *StaticQueue) Empty() bool   { return q.Len() == 0 }
func (q *StaticQueue) ElemSize() int { return q.elemSize }
func (q *StaticQueue) Cap() int      { return q.capacity }
func (q *StaticQueue) Full() bool    { return q.state == live && q.hdr.size() >= q.capacity }

func (q *StaticQueue) wrap(i uint64) uint32 {
	return uint32(i % uint64(q.capacity))
}

func (q *StaticQueue) slot(i uint32) []byte {
	off := int(i) * q.elemSize
	return q.data[off : off+q.elemSize : off+q.elemSize]
}
