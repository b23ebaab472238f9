package containerof

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// lease is the part shared by Borrow and MutBorrow: a registration in the borrow table
// that lasts until Release.
type lease struct {
	released  atomic.Bool
	span      span
	exclusive bool
}

func newLease(s span, exclusive bool) *lease {
	if err := borrows.acquire(s, exclusive); err != nil {
		panic(err)
	}
	return &lease{span: s, exclusive: exclusive}
}

func (l *lease) check(op string) {
	if l.released.Load() {
		panic(contractViolation(ErrReleased, "%s on released borrow of %s", op, l.span))
	}
}

func (l *lease) end() {
	if !l.released.CompareAndSwap(false, true) {
		panic(contractViolation(ErrReleased, "borrow of %s released twice", l.span))
	}
	if err := borrows.release(l.span, l.exclusive); err != nil {
		panic(err)
	}
}

// dropped is installed as a finalizer on borrows. A borrow never owns memory, so a
// forgotten Release is logged and the lease is returned rather than treated as fatal.
func (l *lease) dropped(kind string) {
	if l.released.Load() {
		return
	}
	stats.borrowsDropped.Add(1)

	Logger().LogAttrs(context.Background(), slog.LevelWarn, "[UNRELEASED BORROW] borrow was dropped without being released",
		slog.String("kind", kind),
		slog.String("address", fmt.Sprintf("%#x", l.span.base)),
	)

	if l.released.CompareAndSwap(false, true) {
		_ = borrows.release(l.span, l.exclusive)
	}
}

// Borrow is a shared, non-owning view of a container through member M. Any number of
// shared borrows of the same container may be live at once, but none may coexist with a
// MutBorrow. A Borrow is valid until Release is called; the usual pattern is
//
//	b := tr.Borrow(c)
//	defer b.Release()
//
// Go cannot express read-only pointers. The pointers reachable through a Borrow's handle
// must only be read.
type Borrow[C, F any, M Member[C, F]] struct {
	handle Handle[C, F, M]
	lease  *lease
}

func newBorrow[C, F any, M Member[C, F]](handle Handle[C, F, M]) *Borrow[C, F, M] {
	b := &Borrow[C, F, M]{
		handle: handle,
		lease:  newLease(handle.containerSpan(), false),
	}
	runtime.SetFinalizer(b, func(b *Borrow[C, F, M]) { b.lease.dropped("shared") })
	return b
}

// Handle returns the borrowed handle. It is only valid until the borrow is released.
func (b *Borrow[C, F, M]) Handle() Handle[C, F, M] {
	b.lease.check("Handle")
	return b.handle
}

// Field returns a copy of the borrowed field.
func (b *Borrow[C, F, M]) Field() F {
	b.lease.check("Field")
	return *b.handle.AsField()
}

// Address returns the address of the borrowed field.
func (b *Borrow[C, F, M]) Address() uintptr {
	b.lease.check("Address")
	return b.handle.Address()
}

// Release ends the borrow. Releasing twice panics.
func (b *Borrow[C, F, M]) Release() {
	b.lease.end()
	runtime.SetFinalizer(b, nil)
}

// MutBorrow is an exclusive, non-owning view of a container through member M. While it is
// live no other borrow of the same container may exist.
type MutBorrow[C, F any, M Member[C, F]] struct {
	handle Handle[C, F, M]
	lease  *lease
}

func newMutBorrow[C, F any, M Member[C, F]](handle Handle[C, F, M]) *MutBorrow[C, F, M] {
	b := &MutBorrow[C, F, M]{
		handle: handle,
		lease:  newLease(handle.containerSpan(), true),
	}
	runtime.SetFinalizer(b, func(b *MutBorrow[C, F, M]) { b.lease.dropped("exclusive") })
	return b
}

// Handle returns the borrowed handle. It is only valid until the borrow is released.
func (b *MutBorrow[C, F, M]) Handle() Handle[C, F, M] {
	b.lease.check("Handle")
	return b.handle
}

// AsField returns the borrowed field.
func (b *MutBorrow[C, F, M]) AsField() *F {
	b.lease.check("AsField")
	return b.handle.AsField()
}

// AsContainer returns the container embedding the borrowed field.
func (b *MutBorrow[C, F, M]) AsContainer() *C {
	b.lease.check("AsContainer")
	return b.handle.AsContainer()
}

// SetField overwrites the borrowed field.
func (b *MutBorrow[C, F, M]) SetField(value F) {
	b.lease.check("SetField")
	*b.handle.AsField() = value
}

// Address returns the address of the borrowed field.
func (b *MutBorrow[C, F, M]) Address() uintptr {
	b.lease.check("Address")
	return b.handle.Address()
}

// Release ends the borrow. Releasing twice panics.
func (b *MutBorrow[C, F, M]) Release() {
	b.lease.end()
	runtime.SetFinalizer(b, nil)
}
