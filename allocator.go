package bufds

import "github.com/cockroachdb/errors"

// Allocator hands out element storage to the dynamic containers.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(b []byte)
}

type heapAllocator struct{}

// Heap returns the allocator backed by the Go heap. It never fails.
func Heap() Allocator { return heapAllocator{} }

func (heapAllocator) Alloc(n int) ([]byte, error) { return make([]byte, n), nil }
func (heapAllocator) Free([]byte)                 {}

// BudgetAllocator is a heap allocator that refuses to hand out more than a
// fixed number of bytes at once. It makes allocation exhaustion observable.
type BudgetAllocator struct {
	limit int
	inUse int
}

func NewBudgetAllocator(limit int) *BudgetAllocator {
	return &BudgetAllocator{limit: limit}
}

func (a *BudgetAllocator) Alloc(n int) ([]byte, error) {
	if n < 0 || a.inUse+n > a.limit {
		return nil, errors.Wrapf(ErrNoMemory, "%d bytes requested, %d of %d in use", n, a.inUse, a.limit)
	}
	a.inUse += n
	return make([]byte, n), nil
}

func (a *BudgetAllocator) Free(b []byte) {
	a.inUse -= len(b)
	if a.inUse < 0 {
		a.inUse = 0
	}
}

// InUse returns the number of bytes currently handed out.
func (a *BudgetAllocator) InUse() int { return a.inUse }
