package bufds

import (
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

// StaticStack is a flat array of slots inside a caller buffer with the size
// acting as the cursor: the top is slot size-1.
type StaticStack struct {
	hdr      header
	data     []byte
	elemSize int
	capacity int
	scrub    bool
	log      logr.Logger
	state    state
}

func NewStaticStack(buf []byte, elemSize int, opts ...Option) (*StaticStack, error) {
	capacity, err := slotCapacity(len(buf), elemSize, poolPerElem(elemSize))
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	h := header(buf[:HeaderSize])
	h.init(kindStack, elemSize, capacity)
	o.log.V(1).Info("static stack laid out",
		"buffer", len(buf), "elemSize", elemSize, "capacity", capacity)
	return newStaticStack(buf, h, elemSize, capacity, o), nil
}

// AttachStaticStack returns a handle to a stack previously formatted in buf.
func AttachStaticStack(buf []byte, opts ...Option) (*StaticStack, error) {
	h, elemSize, capacity, err := attachHeader(buf, kindStack, poolPerElem)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	o.log.V(1).Info("static stack attached", "elemSize", elemSize, "capacity", capacity, "size", h.size())
	return newStaticStack(buf, h, elemSize, capacity, o), nil
}

func newStaticStack(buf []byte, h header, elemSize, capacity int, o options) *StaticStack {
	end := HeaderSize + capacity*elemSize
	return &StaticStack{
		hdr:      h,
		data:     buf[HeaderSize:end:end],
		elemSize: elemSize,
		capacity: capacity,
		scrub:    o.scrub,
		log:      o.log,
		state:    live,
	}
}

func (s *StaticStack) Push(elem []byte, cp CopyFunc) error {
	if s.state != live {
		return ErrNotLive
	}
	if err := checkElem(elem, s.elemSize); err != nil {
		return err
	}
	size := s.hdr.size()
	if size >= s.capacity {
		s.log.V(1).Info("static stack full", "capacity", s.capacity)
		return errors.Wrapf(ErrOverflow, "stack holds %d elements", s.capacity)
	}
	copyElem(s.slot(size), elem, cp)
	s.hdr.setSize(size + 1)
	return nil
}

func (s *StaticStack) Pop() error {
	if s.state != live {
		return ErrNotLive
	}
	size := s.hdr.size()
	if size == 0 {
		return errors.Wrap(ErrEmpty, "pop")
	}
	if s.scrub {
		clear(s.slot(size - 1))
	}
	s.hdr.setSize(size - 1)
	return nil
}

func (s *StaticStack) Clear() {
	if s.state != live {
		return
	}
	if s.scrub {
		clear(s.data[:s.hdr.size()*s.elemSize])
	}
	s.hdr.setSize(0)
}

// Destroy resets the bookkeeping in the buffer. The buffer stays with the
// caller.
func (s *StaticStack) Destroy() {
	if s.state != live {
		return
	}
	s.Clear()
	s.hdr.invalidate()
	s.state = destroyed
	s.log.V(1).Info("static stack destroyed", "capacity", s.capacity)
}

func (s *StaticStack) Top() []byte {
	if s.state != live {
		return nil
	}
	size := s.hdr.size()
	if size == 0 {
		return nil
	}
	return s.slot(size - 1)
}

func (s *StaticStack) Len() int {
	if s.state != live {
		return 0
	}
	return s.hdr.size()
}

func (s *StaticStack) Empty() bool   { return s.Len() == 0 }
func (s *StaticStack) ElemSize() int { return s.elemSize }
func (s *StaticStack) Cap() int      { return s.capacity }
func (s *StaticStack) Full() bool    { return s.state == live && s.hdr.size() >= s.capacity }

func (s *StaticStack) slot(i int) []byte {
	off := i * s.elemSize
	return s.data[off : off+s.elemSize : off+s.elemSize]
}
