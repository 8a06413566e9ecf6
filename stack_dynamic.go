package bufds

import (
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

type snode struct {
	data []byte
	next *snode
}

// DynamicStack is a singly-linked LIFO; the head of the chain is the top.
type DynamicStack struct {
	top      *snode
	size     int
	elemSize int
	alloc    Allocator
	log      logr.Logger
	state    state
}

func NewDynamicStack(elemSize int, opts ...Option) (*DynamicStack, error) {
	if elemSize <= 0 {
		return nil, errors.Wrapf(ErrFailure, "invalid element size %d", elemSize)
	}
	o := buildOptions(opts)
	o.log.V(1).Info("dynamic stack created", "elemSize", elemSize)
	return &DynamicStack{
		elemSize: elemSize,
		alloc:    o.alloc,
		log:      o.log,
		state:    live,
	}, nil
}

func (s *DynamicStack) Push(elem []byte, cp CopyFunc) error {
	if s.state != live {
		return ErrNotLive
	}
	if err := checkElem(elem, s.elemSize); err != nil {
		return err
	}
	data, err := s.alloc.Alloc(s.elemSize)
	if err != nil {
		s.log.V(1).Info("stack node allocation failed", "size", s.size, "err", err)
		return err
	}
	copyElem(data, elem, cp)
	s.top = &snode{data: data, next: s.top}
	s.size++
	return nil
}

func (s *DynamicStack) Pop() error {
	if s.state != live {
		return ErrNotLive
	}
	if s.top == nil {
		return errors.Wrap(ErrEmpty, "pop")
	}
	p := s.top
	s.top = p.next
	s.alloc.Free(p.data)
	p.data, p.next = nil, nil
	s.size--
	return nil
}

func (s *DynamicStack) Clear() {
	for s.state == live && s.top != nil {
		_ = s.Pop()
	}
}

func (s *DynamicStack) Destroy() {
	if s.state != live {
		return
	}
	s.Clear()
	s.state = destroyed
	s.log.V(1).Info("dynamic stack destroyed")
}

func (s *DynamicStack) Top() []byte {
	if s.state != live || s.top == nil {
		return nil
	}
	return s.top.data
}

func (s *DynamicStack) Len() int      { return s.size }
func (s *DynamicStack) Empty() bool   { return s.size == 0 }
func (s *DynamicStack) ElemSize() int { return s.elemSize }
