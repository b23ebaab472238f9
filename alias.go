package containerof

import (
	"fmt"
	"unsafe"
)

// Alias is the untyped, address-sized representation shared by every Handle. Two aliases
// are equal when they hold the same address. An Alias carries no type information and
// should only ever be interpreted through a Handle whose member describes the
// container/field pair the address belongs to.
//
// Alias stores an unsafe.Pointer rather than a uintptr so that the garbage collector keeps
// the addressed object alive for as long as an alias to it (interior or not) is reachable.
type Alias struct {
	p unsafe.Pointer
}

// AliasOf captures the address of ref.
func AliasOf[T any](ref *T) Alias {
	return Alias{p: unsafe.Pointer(ref)}
}

// AliasFromPointer wraps an existing unsafe.Pointer.
func AliasFromPointer(p unsafe.Pointer) Alias {
	return Alias{p: p}
}

// AliasFromAddress builds an alias from a raw address. It is only valid for memory the Go
// runtime does not manage: C allocations, mmap'd regions, device mappings. An address
// taken from a Go object goes stale as soon as the runtime moves the object (stacks are
// copied when they grow), so alias Go memory with AliasOf or AliasFromPointer instead.
//
//go:nocheckptr
func AliasFromAddress(addr uintptr) Alias {
	return Alias{p: unsafe.Pointer(addr)}
}

// Address returns the address held by the alias.
func (a Alias) Address() uintptr {
	return uintptr(a.p)
}

// Pointer returns the address held by the alias as an unsafe.Pointer.
func (a Alias) Pointer() unsafe.Pointer {
	return a.p
}

// IsNil reports whether the alias holds the zero address.
func (a Alias) IsNil() bool {
	return a.p == nil
}

func (a Alias) add(offset uintptr) Alias {
	return Alias{p: unsafe.Add(a.p, offset)}
}

func (a Alias) sub(offset uintptr) Alias {
	return Alias{p: unsafe.Add(a.p, -int(offset))}
}

func (a Alias) String() string {
	return fmt.Sprintf("%#x", a.Address())
}
