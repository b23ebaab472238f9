package containerof

import "unsafe"

// Handle is the typed field handle for member M. Its only field is an Alias, so a Handle
// has exactly the representation of an Alias and the two can be reinterpreted in place
// (see Translator.OfAlias and Translator.AsAlias).
//
// A Handle does not record whether it owns its container or merely borrows it. That
// follows from where it came from: Translator.FromContainer and Translator.FromField
// produce owning handles which must eventually go back through IntoContainer or
// IntoField, while handles taken from a Borrow or MutBorrow are only valid until the
// borrow is released.
type Handle[C, F any, M Member[C, F]] struct {
	alias Alias
}

// Alias returns the handle's untyped representation. This is a relabeling, the address
// is unchanged.
func (h Handle[C, F, M]) Alias() Alias {
	return h.alias
}

// Address returns the address of the field the handle denotes.
func (h Handle[C, F, M]) Address() uintptr {
	return h.alias.Address()
}

// IsNil reports whether the handle is the zero handle.
func (h Handle[C, F, M]) IsNil() bool {
	return h.alias.IsNil()
}

// AsField returns the field the handle denotes.
func (h Handle[C, F, M]) AsField() *F {
	return (*F)(h.alias.p)
}

// AsContainer returns the container that embeds the field the handle denotes. The handle
// must denote a field that really is embedded in a C; for a handle built from a standalone
// field allocation the result is meaningless.
func (h Handle[C, F, M]) AsContainer() *C {
	var member M
	return (*C)(h.alias.sub(member.Offset()).p)
}

func (h Handle[C, F, M]) containerBase() uintptr {
	var member M
	return h.alias.Address() - member.Offset()
}

// containerSpan is the memory a borrow through the handle leases: the whole container.
func (h Handle[C, F, M]) containerSpan() span {
	var container C
	return spanOf(h.containerBase(), unsafe.Sizeof(container))
}

func (h Handle[C, F, M]) fieldSpan() span {
	var field F
	return spanOf(h.alias.Address(), unsafe.Sizeof(field))
}

func (h Handle[C, F, M]) String() string {
	return h.alias.String()
}

var _ [unsafe.Sizeof(Alias{})]byte = [unsafe.Sizeof(Handle[struct{}, struct{}, emptyMember]{})]byte{}

type emptyMember struct{}

func (emptyMember) Offset() uintptr                     { return 0 }
func (emptyMember) Field(container *struct{}) *struct{} { return container }
