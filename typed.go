package bufds

import (
	"encoding/binary"
	"iter"

	"github.com/cockroachdb/errors"
)

// Codec converts values of T to and from fixed-size element bytes.
type Codec[T any] interface {
	Size() int
	Encode(dst []byte, v T)
	Decode(src []byte) T
}

// SizeOf returns the encoded size of T under BinaryCodec, or -1 when T has no
// fixed size (ints, slices, strings, pointers...).
func SizeOf[T any]() int {
	var v T
	return binary.Size(v)
}

type binaryCodec[T any] struct{ size int }

// BinaryCodec encodes T little-endian with encoding/binary. T must have a
// fixed size: fixed-width numbers, bools, arrays and structs of those.
func BinaryCodec[T any]() (Codec[T], error) {
	n := SizeOf[T]()
	if n <= 0 {
		var v T
		return nil, errors.Wrapf(ErrFailure, "%T has no fixed binary size", v)
	}
	return binaryCodec[T]{size: n}, nil
}

func (c binaryCodec[T]) Size() int { return c.size }

func (c binaryCodec[T]) Encode(dst []byte, v T) {
	if _, err := binary.Encode(dst, le, v); err != nil {
		panic(errors.WithAssertionFailure(err))
	}
}

func (c binaryCodec[T]) Decode(src []byte) T {
	var v T
	if _, err := binary.Decode(src, le, &v); err != nil {
		panic(errors.WithAssertionFailure(err))
	}
	return v
}

func checkCodec(codecSize, elemSize int) error {
	if codecSize != elemSize {
		return errors.Wrapf(ErrElemSize, "codec encodes %d bytes, container holds %d", codecSize, elemSize)
	}
	return nil
}

// encoder returns a CopyFunc that encodes v straight into the destination
// slot, skipping the scratch copy.
func encoder[T any](c Codec[T], v T) CopyFunc {
	return func(dst, _ []byte) { c.Encode(dst, v) }
}

// TypedList is a List of T values.
type TypedList[T any] struct {
	l       List
	c       Codec[T]
	scratch []byte
}

func NewTypedList[T any](l List, c Codec[T]) (*TypedList[T], error) {
	if err := checkCodec(c.Size(), l.ElemSize()); err != nil {
		return nil, err
	}
	return &TypedList[T]{l: l, c: c, scratch: make([]byte, c.Size())}, nil
}

func (t *TypedList[T]) encode(v T) []byte {
	t.c.Encode(t.scratch, v)
	return t.scratch
}

func (t *TypedList[T]) PushBack(v T) error  { return t.l.PushBack(t.encode(v)) }
func (t *TypedList[T]) PushFront(v T) error { return t.l.PushFront(t.encode(v)) }

// Insert puts v immediately before pos.
func (t *TypedList[T]) Insert(pos Iterator, v T) error { return t.l.Insert(pos, t.encode(v)) }

func (t *TypedList[T]) PopBack()  { t.l.PopBack() }
func (t *TypedList[T]) PopFront() { t.l.PopFront() }

func (t *TypedList[T]) Front() (T, bool) { return t.decode(t.l.Front()) }
func (t *TypedList[T]) Back() (T, bool)  { return t.decode(t.l.Back()) }

// At decodes the element it points at; ok is false at the list end.
func (t *TypedList[T]) At(it Iterator) (v T, ok bool) { return t.decode(it.Data()) }

// All yields the elements front to back.
func (t *TypedList[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for it := t.l.Begin(); it != t.l.End(); it = it.Next() {
			if !yield(t.c.Decode(it.Data())) {
				return
			}
		}
	}
}

// Backward yields the elements back to front.
func (t *TypedList[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for it := t.l.Last(); it != t.l.End(); it = it.Prev() {
			if !yield(t.c.Decode(it.Data())) {
				return
			}
		}
	}
}

func (t *TypedList[T]) Len() int     { return t.l.Len() }
func (t *TypedList[T]) Unwrap() List { return t.l }

func (t *TypedList[T]) decode(b []byte) (v T, ok bool) {
	if b == nil {
		return v, false
	}
	return t.c.Decode(b), true
}

// TypedQueue is a Queue of T values.
type TypedQueue[T any] struct {
	q       Queue
	c       Codec[T]
	scratch []byte
}

func NewTypedQueue[T any](q Queue, c Codec[T]) (*TypedQueue[T], error) {
	if err := checkCodec(c.Size(), q.ElemSize()); err != nil {
		return nil, err
	}
	return &TypedQueue[T]{q: q, c: c, scratch: make([]byte, c.Size())}, nil
}

func (t *TypedQueue[T]) Push(v T) error { return t.q.Push(t.scratch, encoder(t.c, v)) }

// Pop removes and returns the oldest value.
func (t *TypedQueue[T]) Pop() (T, error) {
	var v T
	b := t.q.Front()
	if b == nil {
		return v, t.q.Pop()
	}
	v = t.c.Decode(b)
	return v, t.q.Pop()
}

func (t *TypedQueue[T]) Front() (v T, ok bool) {
	if b := t.q.Front(); b != nil {
		return t.c.Decode(b), true
	}
	return v, false
}

func (t *TypedQueue[T]) Rear() (v T, ok bool) {
	if b := t.q.Rear(); b != nil {
		return t.c.Decode(b), true
	}
	return v, false
}

func (t *TypedQueue[T]) Len() int      { return t.q.Len() }
func (t *TypedQueue[T]) Unwrap() Queue { return t.q }

// TypedStack is a Stack of T values.
type TypedStack[T any] struct {
	s       Stack
	c       Codec[T]
	scratch []byte
}

func NewTypedStack[T any](s Stack, c Codec[T]) (*TypedStack[T], error) {
	if err := checkCodec(c.Size(), s.ElemSize()); err != nil {
		return nil, err
	}
	return &TypedStack[T]{s: s, c: c, scratch: make([]byte, c.Size())}, nil
}

func (t *TypedStack[T]) Push(v T) error { return t.s.Push(t.scratch, encoder(t.c, v)) }

// Pop removes and returns the top value.
func (t *TypedStack[T]) Pop() (T, error) {
	var v T
	b := t.s.Top()
	if b == nil {
		return v, t.s.Pop()
	}
	v = t.c.Decode(b)
	return v, t.s.Pop()
}

func (t *TypedStack[T]) Top() (v T, ok bool) {
	if b := t.s.Top(); b != nil {
		return t.c.Decode(b), true
	}
	return v, false
}

func (t *TypedStack[T]) Len() int      { return t.s.Len() }
func (t *TypedStack[T]) Unwrap() Stack { return t.s }
