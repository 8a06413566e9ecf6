// Package bufds provides a doubly-linked list, a FIFO queue and a LIFO stack
// over fixed-size, type-erased elements. Every container comes in two
// flavors: a dynamic one that allocates each node through an Allocator, and a
// static one that carves all of its storage out of a single caller-supplied
// buffer and never allocates again.
package bufds

import "github.com/cockroachdb/errors"

var (
	// ErrFailure is the generic failure every non-overflow error is marked as.
	ErrFailure = errors.New("operation failed")
	// ErrOverflow is returned by static containers when they are full.
	ErrOverflow = errors.New("capacity exceeded")

	ErrEmpty          = errors.Mark(errors.New("container empty"), ErrFailure)
	ErrElemSize       = errors.Mark(errors.New("element size mismatch"), ErrFailure)
	ErrNoMemory       = errors.Mark(errors.New("allocation failed"), ErrFailure)
	ErrBufferTooSmall = errors.Mark(errors.New("buffer too small"), ErrFailure)
	ErrBadIterator    = errors.Mark(errors.New("iterator does not belong to list"), ErrFailure)
	ErrNotLive        = errors.Mark(errors.New("container not initialized or destroyed"), ErrFailure)
	ErrBadLayout      = errors.Mark(errors.New("buffer does not hold a container"), ErrFailure)
)

// CopyFunc copies one element from src into dst. Both slices have the
// container's element size.
type CopyFunc func(dst, src []byte)

type Container interface {
	Len() int
	Empty() bool
	ElemSize() int
	// Clear removes every element.
	Clear()
	// Destroy releases dynamic storage, or resets the bookkeeping of a
	// static container. The buffer of a static container is never released.
	Destroy()
}

// Bounded is implemented by the static containers only.
type Bounded interface {
	Cap() int
	Full() bool
}

type Iterator interface {
	// Data returns the element the iterator points at, or nil at the list end.
	Data() []byte
	Next() Iterator
	Prev() Iterator
	// Forward moves n steps towards the back; a negative n moves backward.
	Forward(n int) Iterator
	// Backward moves n steps towards the front; a negative n moves forward.
	Backward(n int) Iterator
}

type List interface {
	Container
	// Insert puts elem immediately before pos.
	Insert(pos Iterator, elem []byte) error
	PushBack(elem []byte) error
	PushFront(elem []byte) error
	PopBack()
	PopFront()
	Front() []byte
	Back() []byte
	Begin() Iterator
	// End is one past the last element.
	End() Iterator
	// Last points at the last element, or equals End when the list is empty.
	Last() Iterator
}

type Queue interface {
	Container
	Push(elem []byte, copy CopyFunc) error
	Pop() error
	Front() []byte
	Rear() []byte
}

type Stack interface {
	Container
	Push(elem []byte, copy CopyFunc) error
	Pop() error
	Top() []byte
}

type state uint8

const (
	uninitialized state = iota
	live
	destroyed
)

func checkElem(elem []byte, elemSize int) error {
	if len(elem) != elemSize {
		return errors.Wrapf(ErrElemSize, "got %d bytes, want %d", len(elem), elemSize)
	}
	return nil
}

func copyElem(dst, src []byte, cp CopyFunc) {
	if cp != nil {
		cp(dst, src)
		return
	}
	copy(dst, src)
}
