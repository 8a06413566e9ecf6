package bufds

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func forEachQueue(t *testing.T, fn func(t *testing.T, build func(elemSize, capacity int) Queue)) {
	t.Run("dynamic", func(t *testing.T) {
		fn(t, func(elemSize, _ int) Queue {
			q, err := NewDynamicQueue(elemSize, WithLogger(testLogger(t)))
			require.NoError(t, err)
			return q
		})
	})
	t.Run("static", func(t *testing.T) {
		fn(t, func(elemSize, capacity int) Queue {
			buf := make([]byte, QueueBufferSize(elemSize, capacity))
			q, err := NewStaticQueue(buf, elemSize, WithLogger(testLogger(t)))
			require.NoError(t, err)
			require.Equal(t, capacity, q.Cap())
			return q
		})
	})
}

func drainQueue(t *testing.T, q Queue) []int32 {
	var out []int32
	for !q.Empty() {
		out = append(out, asI32(q.Front()))
		require.NoError(t, q.Pop())
	}
	return out
}

func TestQueueFIFO(t *testing.T) {
	forEachQueue(t, func(t *testing.T, build func(int, int) Queue) {
		q := build(4, 8)
		for _, v := range []int32{10, 20, 30} {
			require.NoError(t, q.Push(i32(v), nil))
		}
		require.Equal(t, 3, q.Len())
		require.Equal(t, int32(10), asI32(q.Front()))
		require.Equal(t, int32(30), asI32(q.Rear()))

		for _, want := range []int32{10, 20, 30} {
			require.Equal(t, want, asI32(q.Front()))
			require.NoError(t, q.Pop())
		}
		require.True(t, q.Empty())
		require.Nil(t, q.Front())
		require.Nil(t, q.Rear())

		err := q.Pop()
		require.True(t, errors.Is(err, ErrEmpty), "%v", err)
		require.Equal(t, StatusError, StatusOf(err))
		require.Zero(t, q.Len())
	})
}

func TestQueueRearAfterPops(t *testing.T) {
	forEachQueue(t, func(t *testing.T, build func(int, int) Queue) {
		q := build(4, 4)
		require.NoError(t, q.Push(i32(1), nil))
		require.NoError(t, q.Pop())
		require.Nil(t, q.Rear())

		require.NoError(t, q.Push(i32(2), nil))
		require.Equal(t, int32(2), asI32(q.Front()))
		require.Equal(t, int32(2), asI32(q.Rear()))
	})
}

func TestQueueCustomCopy(t *testing.T) {
	forEachQueue(t, func(t *testing.T, build func(int, int) Queue) {
		q := build(4, 4)
		calls := 0
		double := func(dst, src []byte) {
			calls++
			le.PutUint32(dst, 2*le.Uint32(src))
		}
		require.NoError(t, q.Push(i32(21), double))
		require.NoError(t, q.Push(i32(5), nil))
		require.Equal(t, 1, calls)
		require.Equal(t, []int32{42, 5}, drainQueue(t, q))

		// The copy routine is not called when validation fails.
		require.Error(t, q.Push([]byte{1}, double))
		require.Equal(t, 1, calls)
	})
}

func TestQueueElemSizeMismatch(t *testing.T) {
	forEachQueue(t, func(t *testing.T, build func(int, int) Queue) {
		q := build(4, 1)
		require.NoError(t, q.Push(i32(1), nil))

		// Size is checked before capacity, so a full static queue still
		// reports a size mismatch.
		err := q.Push(make([]byte, 2), nil)
		require.True(t, errors.Is(err, ErrElemSize), "%v", err)
		require.Equal(t, StatusError, StatusOf(err))
		require.Equal(t, 1, q.Len())
	})
}

func TestQueueClearAndDestroy(t *testing.T) {
	forEachQueue(t, func(t *testing.T, build func(int, int) Queue) {
		q := build(4, 4)
		for _, v := range []int32{1, 2, 3} {
			require.NoError(t, q.Push(i32(v), nil))
		}
		q.Clear()
		require.True(t, q.Empty())
		require.NoError(t, q.Push(i32(4), nil))
		require.Equal(t, []int32{4}, drainQueue(t, q))

		require.NoError(t, q.Push(i32(5), nil))
		q.Destroy()
		require.True(t, errors.Is(q.Push(i32(1), nil), ErrNotLive))
		require.True(t, errors.Is(q.Pop(), ErrNotLive))
		require.Zero(t, q.Len())
		require.Nil(t, q.Front())
		q.Clear()
		q.Destroy()
	})
}

func TestStaticQueueWrapAround(t *testing.T) {
	q, err := NewStaticQueue(make([]byte, QueueBufferSize(4, 3)), 4)
	require.NoError(t, err)
	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, q.Push(i32(v), nil))
	}
	require.True(t, q.Full())

	err = q.Push(i32(4), nil)
	require.True(t, errors.Is(err, ErrOverflow), "%v", err)
	require.Equal(t, StatusOverflow, StatusOf(err))
	require.Equal(t, 3, q.Len())

	require.NoError(t, q.Pop())
	require.NoError(t, q.Push(i32(4), nil))
	require.Equal(t, uint32(1), q.hdr.get(offB))
	require.Equal(t, int32(2), asI32(q.Front()))
	require.Equal(t, int32(4), asI32(q.Rear()))

	for i := int32(5); i < 20; i++ {
		require.NoError(t, q.Pop())
		require.NoError(t, q.Push(i32(i), nil))
	}
	require.Equal(t, []int32{17, 18, 19}, drainQueue(t, q))
}

func TestStaticQueueCapacity(t *testing.T) {
	q, err := NewStaticQueue(make([]byte, QueueBufferSize(4, 8)+3), 4)
	require.NoError(t, err)
	require.Equal(t, 8, q.Cap())

	_, err = NewStaticQueue(make([]byte, HeaderSize+3), 4)
	require.True(t, errors.Is(err, ErrBufferTooSmall), "%v", err)
	_, err = NewStaticQueue(make([]byte, 8), 4)
	require.True(t, errors.Is(err, ErrBufferTooSmall), "%v", err)
	_, err = NewStaticQueue(make([]byte, 64), 0)
	require.True(t, errors.Is(err, ErrFailure), "%v", err)
}

func TestStaticQueueScrub(t *testing.T) {
	buf := make([]byte, QueueBufferSize(4, 2))
	slot0 := buf[HeaderSize : HeaderSize+4]

	q, err := NewStaticQueue(buf, 4)
	require.NoError(t, err)
	require.NoError(t, q.Push(i32(-1), nil))
	require.NoError(t, q.Pop())
	require.Equal(t, []byte{0, 0, 0, 0}, slot0)

	q, err = NewStaticQueue(buf, 4, WithScrub(false))
	require.NoError(t, err)
	require.NoError(t, q.Push(i32(-1), nil))
	require.NoError(t, q.Pop())
	require.Equal(t, i32(-1), slot0)
}

func TestStaticQueueRebuildAndAttach(t *testing.T) {
	buf := make([]byte, QueueBufferSize(4, 8))
	q, err := NewStaticQueue(buf, 4)
	require.NoError(t, err)
	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, q.Push(i32(v), nil))
	}
	require.NoError(t, q.Pop())

	other, err := AttachStaticQueue(buf)
	require.NoError(t, err)
	require.Equal(t, 8, other.Cap())
	require.Equal(t, []int32{2, 3}, drainQueue(t, other))
	require.True(t, q.Empty())

	q.Destroy()
	_, err = AttachStaticQueue(buf)
	require.True(t, errors.Is(err, ErrBadLayout), "%v", err)

	q, err = NewStaticQueue(buf, 4)
	require.NoError(t, err)
	require.Zero(t, q.Len())
	require.Equal(t, 8, q.Cap())
	require.Nil(t, q.Front())

	// Corrupt ring indexes are refused.
	q.hdr.set(offA, 8)
	_, err = AttachStaticQueue(buf)
	require.True(t, errors.Is(err, ErrBadLayout), "%v", err)
}

func TestDynamicQueueOutOfMemory(t *testing.T) {
	_, err := NewDynamicQueue(4, WithAllocator(NewBudgetAllocator(3)))
	require.True(t, errors.Is(err, ErrNoMemory), "%v", err)

	alloc := NewBudgetAllocator(12)
	q, err := NewDynamicQueue(4, WithAllocator(alloc))
	require.NoError(t, err)
	require.Equal(t, 4, alloc.InUse())

	require.NoError(t, q.Push(i32(1), nil))
	require.NoError(t, q.Push(i32(2), nil))
	err = q.Push(i32(3), nil)
	require.True(t, errors.Is(err, ErrNoMemory), "%v", err)
	require.Equal(t, 2, q.Len())
	require.Equal(t, int32(2), asI32(q.Rear()))

	q.Destroy()
	require.Zero(t, alloc.InUse())
}
