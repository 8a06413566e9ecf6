package bufds_test

import (
	"fmt"

	"github.com/fabiokung/bufds"
)

func ExampleStaticList() {
	c, _ := bufds.BinaryCodec[int32]()
	buf := make([]byte, bufds.ListBufferSizeOf[int32](8))
	sl, err := bufds.NewStaticList(buf, c.Size())
	if err != nil {
		panic(err)
	}
	l, _ := bufds.NewTypedList(bufds.List(sl), c)
	for i := int32(1); i <= 6; i++ {
		_ = l.PushBack(i)
	}
	_ = l.Insert(sl.Last(), 10)

	var got []any
	for it := sl.Begin(); it != sl.Last(); it = it.Next() {
		v, _ := l.At(it)
		got = append(got, v)
	}
	fmt.Println(got...)
	fmt.Println(sl.Len(), "of", sl.Cap())
	// Output:
	// 1 2 3 4 5 10
	// 7 of 8
}

func ExampleStaticQueue() {
	buf := make([]byte, bufds.QueueBufferSize(4, 8))
	q, err := bufds.NewStaticQueue(buf, 4)
	if err != nil {
		panic(err)
	}
	tq, _ := bufds.NewTypedQueue[int32](q, mustCodec[int32]())
	for _, v := range []int32{10, 20, 30} {
		_ = tq.Push(v)
	}
	for range 3 {
		v, _ := tq.Pop()
		fmt.Println(v)
	}
	_, err = tq.Pop()
	fmt.Println(bufds.StatusOf(err))
	// Output:
	// 10
	// 20
	// 30
	// error
}

func ExampleDynamicStack() {
	s, _ := bufds.NewDynamicStack(8)
	ts, _ := bufds.NewTypedStack[uint64](s, mustCodec[uint64]())
	for _, v := range []uint64{10, 20, 30} {
		_ = ts.Push(v)
	}
	for ts.Len() > 0 {
		v, _ := ts.Pop()
		fmt.Println(v)
	}
	// Output:
	// 30
	// 20
	// 10
}

func ExampleStatusOf() {
	buf := make([]byte, bufds.StackBufferSize(4, 1))
	s, _ := bufds.NewStaticStack(buf, 4)
	fmt.Println(bufds.StatusOf(s.Push([]byte{1, 2, 3, 4}, nil)))
	fmt.Println(bufds.StatusOf(s.Push([]byte{1, 2, 3, 4}, nil)))
	fmt.Println(bufds.StatusOf(s.Push([]byte{1, 2}, nil)))
	// Output:
	// ok
	// overflow
	// error
}

func mustCodec[T any]() bufds.Codec[T] {
	c, err := bufds.BinaryCodec[T]()
	if err != nil {
		panic(err)
	}
	return c
}
