package containerof

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// Owned represents exclusive ownership of an allocation of type T, tracked purely by
// address. It must be consumed exactly once, by Release or ReleaseAlias. Consuming it a
// second time panics. Letting it become unreachable without consuming it is a fatal
// contract violation: when the garbage collector notices, the leak is logged and the
// process panics.
//
// Owned values are always handled through a pointer; copying the struct itself is not
// allowed.
type Owned[T any] struct {
	released atomic.Bool
	alias    Alias
	site     error
}

// Own claims ownership of the allocation v points at. v must be the start of its
// allocation (for instance the result of new(T) or &T{...}), not a pointer to a field
// inside some larger object.
func Own[T any](v *T) *Owned[T] {
	return claim[T](AliasOf(v))
}

// OwnAlias claims ownership of the allocation a denotes. The caller asserts that a is the
// start of an allocation of type T; nothing checks this.
func OwnAlias[T any](a Alias) *Owned[T] {
	return claim[T](a)
}

// New allocates a zero T and claims it.
func New[T any]() *Owned[T] {
	return Own(new(T))
}

// NewOf allocates a T holding value and claims it.
func NewOf[T any](value T) *Owned[T] {
	v := new(T)
	*v = value
	return Own(v)
}

func claim[T any](a Alias) *Owned[T] {
	o := &Owned[T]{alias: a, site: claimSite()}
	stats.ownedClaimed.Add(1)
	runtime.SetFinalizer(o, (*Owned[T]).unreleased)
	return o
}

// Live reports whether the Owned has not been consumed yet.
func (o *Owned[T]) Live() bool {
	return !o.released.Load()
}

// Address returns the tracked address. It panics if the Owned was already consumed.
func (o *Owned[T]) Address() uintptr {
	if o.released.Load() {
		panic(contractViolation(ErrReleased, "Address on released %s", typeName[T]()))
	}
	return o.alias.Address()
}

// Peek returns the owned value without giving up ownership. The pointer must not be used
// after the Owned is consumed by someone else.
func (o *Owned[T]) Peek() *T {
	if o.released.Load() {
		panic(contractViolation(ErrReleased, "Peek on released %s", typeName[T]()))
	}
	return (*T)(o.alias.p)
}

// Release consumes the Owned and returns the allocation. The tracked address must still be
// the start of an allocation of type T: an address that was shifted to a field must never
// be released this way. This is the caller's obligation and is not checked.
func (o *Owned[T]) Release() *T {
	return (*T)(o.consume("Release").p)
}

// ReleaseAlias consumes the Owned and returns its address as an Alias. This is always
// valid; responsibility for the allocation passes to whoever holds the alias.
func (o *Owned[T]) ReleaseAlias() Alias {
	return o.consume("ReleaseAlias")
}

func (o *Owned[T]) consume(op string) Alias {
	if !o.released.CompareAndSwap(false, true) {
		panic(contractViolation(ErrReleased, "%s on already released %s at %s", op, typeName[T](), o.alias))
	}

	runtime.SetFinalizer(o, nil)
	stats.ownedReleased.Add(1)

	a := o.alias
	o.alias = Alias{}
	return a
}

func (o *Owned[T]) unreleased() {
	if o.released.Load() {
		return
	}
	stats.ownedLeaked.Add(1)

	reportLeak(Leak{
		Type:    typeName[T](),
		Address: o.alias.Address(),
		Site:    o.site,
	})
}

// Leak describes an Owned that was dropped without being consumed.
type Leak struct {
	Type    string
	Address uintptr
	// Site is where the ownership was claimed. It is only recorded in debug_containerof
	// builds.
	Site    error
}

// Err returns the leak as an assertion failure.
func (l Leak) Err() error {
	err := contractViolation(ErrUnreleased, "%s at %#x", l.Type, l.Address)
	if l.Site != nil {
		err = cerrors.WithSecondaryError(err, l.Site)
	}
	return err
}

// leakHandler overrides abortOnLeak when set. Only tests set it.
var leakHandler atomic.Pointer[func(Leak)]

func reportLeak(leak Leak) {
	if handler := leakHandler.Load(); handler != nil {
		(*handler)(leak)
		return
	}
	abortOnLeak(leak)
}

func abortOnLeak(leak Leak) {
	err := leak.Err()
	Logger().LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED OWNERSHIP] owned value was dropped without being released",
		slog.String("type", leak.Type),
		slog.String("address", fmt.Sprintf("%#x", leak.Address)),
		slog.Any("error", err),
	)
	panic(err)
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
