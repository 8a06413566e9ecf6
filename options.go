package bufds

import "github.com/go-logr/logr"

type options struct {
	log   logr.Logger
	alloc Allocator
	scrub bool
}

// Option configures a container at construction.
type Option func(*options)

// WithLogger sets the logger used for construction and layout messages.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithAllocator sets the allocator of a dynamic container. Static containers
// ignore it.
func WithAllocator(a Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// WithScrub controls whether static containers zero a slot when its element
// is removed. It is on by default.
func WithScrub(on bool) Option {
	return func(o *options) { o.scrub = on }
}

func buildOptions(opts []Option) options {
	o := options{
		log:   logr.Discard(),
		alloc: Heap(),
		scrub: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alloc == nil {
		o.alloc = Heap()
	}
	return o
}
