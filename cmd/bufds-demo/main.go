// Command bufds-demo walks through the list, queue and stack containers on
// either backend.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fabiokung/bufds"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type demoOptions struct {
	static    bool
	capacity  int
	verbosity int
}

func (o *demoOptions) addFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.static, "static", false, "back the containers with a fixed buffer instead of per-node allocation")
	fs.IntVar(&o.capacity, "capacity", 8, "number of elements the static buffer is sized for")
	fs.IntVarP(&o.verbosity, "verbosity", "v", 0, "log verbosity")
}

type demo struct {
	demoOptions
	out io.Writer
	log logr.Logger
}

func newRootCmd() *cobra.Command {
	d := &demo{}
	root := &cobra.Command{
		Use:           "bufds-demo",
		Short:         "Exercise the bufds containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if d.capacity <= 0 {
				return errors.Newf("--capacity must be positive, got %d", d.capacity)
			}
			stdr.SetVerbosity(d.verbosity)
			d.log = stdr.New(log.New(cmd.ErrOrStderr(), "bufds-demo ", log.LstdFlags))
			d.out = cmd.OutOrStdout()
			return nil
		},
	}
	d.addFlags(root.PersistentFlags())

	for _, sub := range []struct {
		use, short string
		run        func() error
	}{
		{"list", "Build a list of ints and a list of structs", d.runList},
		{"queue", "Push 10, 20, 30 through a queue", d.runQueue},
		{"stack", "Push 10, 20, 30 onto a stack", d.runStack},
		{"all", "Run every demo", d.runAll},
	} {
		run := sub.run
		root.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return run() },
		})
	}
	return root
}

func (d *demo) backend() string {
	if d.static {
		return "static"
	}
	return "dynamic"
}

func (d *demo) opts() []bufds.Option {
	return []bufds.Option{bufds.WithLogger(d.log)}
}

func (d *demo) newList(elemSize int) (bufds.List, error) {
	if d.static {
		return bufds.NewStaticList(make([]byte, bufds.ListBufferSize(elemSize, d.capacity)), elemSize, d.opts()...)
	}
	return bufds.NewDynamicList(elemSize, d.opts()...)
}

func (d *demo) newQueue(elemSize int) (bufds.Queue, error) {
	if d.static {
		return bufds.NewStaticQueue(make([]byte, bufds.QueueBufferSize(elemSize, d.capacity)), elemSize, d.opts()...)
	}
	return bufds.NewDynamicQueue(elemSize, d.opts()...)
}

func (d *demo) newStack(elemSize int) (bufds.Stack, error) {
	if d.static {
		return bufds.NewStaticStack(make([]byte, bufds.StackBufferSize(elemSize, d.capacity)), elemSize, d.opts()...)
	}
	return bufds.NewDynamicStack(elemSize, d.opts()...)
}

type sample struct {
	ID    byte
	Value float64
}

func (d *demo) runList() error {
	c, err := bufds.BinaryCodec[int32]()
	if err != nil {
		return err
	}
	raw, err := d.newList(c.Size())
	if err != nil {
		return errors.Wrap(err, "creating list")
	}
	defer raw.Destroy()
	l, err := bufds.NewTypedList(raw, c)
	if err != nil {
		return err
	}
	for i := int32(1); i <= 6; i++ {
		if err := l.PushBack(i); err != nil {
			return errors.Wrapf(err, "pushing %d", i)
		}
	}
	if err := l.Insert(raw.Last(), 10); err != nil {
		return errors.Wrap(err, "inserting 10")
	}
	d.log.V(1).Info("list built", "backend", d.backend(), "len", l.Len())

	fmt.Fprint(d.out, "list:")
	for it := raw.Begin(); it != raw.Last(); it = it.Next() {
		v, _ := l.At(it)
		fmt.Fprint(d.out, " ", v)
	}
	fmt.Fprintln(d.out)

	sc, err := bufds.BinaryCodec[sample]()
	if err != nil {
		return err
	}
	rawSamples, err := d.newList(sc.Size())
	if err != nil {
		return errors.Wrap(err, "creating sample list")
	}
	defer rawSamples.Destroy()
	samples, err := bufds.NewTypedList(rawSamples, sc)
	if err != nil {
		return err
	}
	for i := byte(0); i < 3; i++ {
		if err := samples.PushBack(sample{ID: 'a' + i, Value: float64(i) + 0.5}); err != nil {
			return errors.Wrapf(err, "pushing sample %d", i)
		}
	}
	for s := range samples.All() {
		fmt.Fprintf(d.out, "sample: %c %.1f\n", s.ID, s.Value)
	}
	return nil
}

func (d *demo) runQueue() error {
	q, err := d.newQueue(4)
	if err != nil {
		return errors.Wrap(err, "creating queue")
	}
	defer q.Destroy()

	copies := 0
	counting := func(dst, src []byte) {
		copies++
		copy(dst, src)
	}
	c, err := bufds.BinaryCodec[int32]()
	if err != nil {
		return err
	}
	elem := make([]byte, c.Size())
	for _, v := range []int32{10, 20, 30} {
		c.Encode(elem, v)
		if err := q.Push(elem, counting); err != nil {
			return errors.Wrapf(err, "pushing %d", v)
		}
	}
	d.log.V(1).Info("queue filled", "backend", d.backend(), "len", q.Len(), "copies", copies)

	fmt.Fprint(d.out, "queue:")
	for !q.Empty() {
		fmt.Fprint(d.out, " ", c.Decode(q.Front()))
		if err := q.Pop(); err != nil {
			return err
		}
	}
	fmt.Fprintln(d.out)
	return nil
}

func (d *demo) runStack() error {
	c, err := bufds.BinaryCodec[int32]()
	if err != nil {
		return err
	}
	raw, err := d.newStack(c.Size())
	if err != nil {
		return errors.Wrap(err, "creating stack")
	}
	defer raw.Destroy()
	s, err := bufds.NewTypedStack(raw, c)
	if err != nil {
		return err
	}
	for _, v := range []int32{10, 20, 30} {
		if err := s.Push(v); err != nil {
			return errors.Wrapf(err, "pushing %d", v)
		}
	}
	fmt.Fprint(d.out, "stack:")
	for s.Len() > 0 {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		fmt.Fprint(d.out, " ", v)
	}
	fmt.Fprintln(d.out)
	return nil
}

func (d *demo) runAll() error {
	for _, run := range []func() error{d.runList, d.runQueue, d.runStack} {
		if err := run(); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bufds-demo: %v\n", err)
		os.Exit(1)
	}
}
