package bufds

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// Static containers keep all of their bookkeeping in the first HeaderSize
// bytes of the buffer:
//
//	0  magic
//	4  kind (1 byte) + padding
//	8  element size
//	12 capacity
//	16 size
//	20 a: list first / queue head
//	24 b: list last / queue tail
//	28 reserved
const HeaderSize = 32

// ListNodeSize is the size of one static list node record (prev, next).
const ListNodeSize = 8

const (
	layoutMagic = 0x53464442

	offMagic    = 0
	offKind     = 4
	offElemSize = 8
	offCap      = 12
	offSize     = 16
	offA        = 20
	offB        = 24
)

// maxCapacity leaves math.MaxUint32 free for the list sentinel index.
var maxCapacity uint64 = math.MaxUint32 - 1

type kind uint8

const (
	kindList kind = iota + 1
	kindQueue
	kindStack
)

func (k kind) String() string {
	switch k {
	case kindList:
		return "list"
	case kindQueue:
		return "queue"
	case kindStack:
		return "stack"
	}
	return "unknown"
}

var le = binary.LittleEndian

type header []byte

func (h header) get(off int) uint32    { return le.Uint32(h[off:]) }
func (h header) set(off int, v uint32) { le.PutUint32(h[off:], v) }
func (h header) kind() kind            { return kind(h[offKind]) }
func (h header) elemSize() int         { return int(h.get(offElemSize)) }
func (h header) capacity() int         { return int(h.get(offCap)) }
func (h header) size() int             { return int(h.get(offSize)) }
func (h header) setSize(n int)         { h.set(offSize, uint32(n)) }
func (h header) valid() bool           { return h.get(offMagic) == layoutMagic }
func (h header) invalidate()           { h.set(offMagic, 0) }

func (h header) init(k kind, elemSize, capacity int) {
	clear(h[:HeaderSize])
	h.set(offMagic, layoutMagic)
	h[offKind] = byte(k)
	h.set(offElemSize, uint32(elemSize))
	h.set(offCap, uint32(capacity))
}

// slotCapacity returns how many elements fit in buf when each one costs
// perElem bytes after the header.
func slotCapacity(bufLen, elemSize, perElem int) (int, error) {
	if elemSize <= 0 {
		return 0, errors.Wrapf(ErrFailure, "invalid element size %d", elemSize)
	}
	if bufLen <= HeaderSize {
		return 0, errors.Wrapf(ErrBufferTooSmall, "%d bytes, header needs %d", bufLen, HeaderSize)
	}
	capacity := (bufLen - HeaderSize) / perElem
	if capacity == 0 {
		return 0, errors.Wrapf(ErrBufferTooSmall, "%d bytes hold no %d-byte element", bufLen, elemSize)
	}
	if uint64(capacity) > maxCapacity {
		capacity = int(maxCapacity)
	}
	return capacity, nil
}

// attachHeader validates the header found at the start of buf and returns it
// along with the element size and capacity it records.
func attachHeader(buf []byte, want kind, perElem func(elemSize int) int) (header, int, int, error) {
	if len(buf) < HeaderSize {
		return nil, 0, 0, errors.Wrapf(ErrBadLayout, "%d bytes", len(buf))
	}
	h := header(buf[:HeaderSize])
	if !h.valid() {
		return nil, 0, 0, errors.Wrap(ErrBadLayout, "missing magic")
	}
	if h.kind() != want {
		return nil, 0, 0, errors.Wrapf(ErrBadLayout, "buffer holds a %s, not a %s", h.kind(), want)
	}
	elemSize, capacity := h.elemSize(), h.capacity()
	if elemSize <= 0 || capacity <= 0 || HeaderSize+capacity*perElem(elemSize) > len(buf) {
		return nil, 0, 0, errors.Wrapf(ErrBadLayout,
			"%d slots of %d bytes do not fit in %d bytes", capacity, elemSize, len(buf))
	}
	if h.size() > capacity {
		return nil, 0, 0, errors.Wrapf(ErrBadLayout, "size %d over capacity %d", h.size(), capacity)
	}
	return h, elemSize, capacity, nil
}

func listPerElem(elemSize int) int { return ListNodeSize + elemSize + 1 }
func poolPerElem(elemSize int) int { return elemSize }

// ListBufferSize returns the buffer length a static list needs to hold
// capacity elements of elemSize bytes.
func ListBufferSize(elemSize, capacity int) int {
	return HeaderSize + capacity*listPerElem(elemSize)
}

// QueueBufferSize returns the buffer length a static queue needs to hold
// capacity elements of elemSize bytes.
func QueueBufferSize(elemSize, capacity int) int {
	return HeaderSize + capacity*poolPerElem(elemSize)
}

// StackBufferSize returns the buffer length a static stack needs to hold
// capacity elements of elemSize bytes.
func StackBufferSize(elemSize, capacity int) int {
	return HeaderSize + capacity*poolPerElem(elemSize)
}

func ListBufferSizeOf[T any](capacity int) int  { return ListBufferSize(SizeOf[T](), capacity) }
func QueueBufferSizeOf[T any](capacity int) int { return QueueBufferSize(SizeOf[T](), capacity) }
func StackBufferSizeOf[T any](capacity int) int { return StackBufferSize(SizeOf[T](), capacity) }
