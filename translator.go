package containerof

import "unsafe"

// Translator derives every conversion between a container C, its field F and the Handle
// for member M. It is an empty value; declare one per member and call its methods:
//
//	var tasks containerof.Translator[task, ilist.Link, taskLink]
//
//	h := tasks.FromContainer(containerof.NewOf(task{name: "a"}))
//	t := h.AsContainer()
//	owned := tasks.IntoContainer(h)
//
// Every conversion is address arithmetic: field = container + Offset, container = field -
// Offset. Nothing is validated. In particular a handle built from a standalone field
// (FromField) must not be turned into a container, and a handle taken from a borrow must
// not be turned into an owning one.
type Translator[C, F any, M Member[C, F]] struct{}

// Offset returns member M's field offset.
func (Translator[C, F, M]) Offset() uintptr {
	var member M
	return member.Offset()
}

// FromContainer consumes ownership of a container and returns an owning handle to its
// field. The handle must eventually be passed back to IntoContainer.
func (t Translator[C, F, M]) FromContainer(container *Owned[C]) Handle[C, F, M] {
	debugCheckMember[C, F, M](container.Peek())
	return Handle[C, F, M]{alias: container.ReleaseAlias().add(t.Offset())}
}

// IntoContainer consumes an owning handle and returns ownership of the container that
// embeds its field.
func (t Translator[C, F, M]) IntoContainer(handle Handle[C, F, M]) *Owned[C] {
	debugCheckNotBorrowed(handle.containerSpan())
	return OwnAlias[C](handle.alias.sub(t.Offset()))
}

// FromField consumes ownership of a standalone field allocation and returns an owning
// handle to it. The field is the unit of ownership: the handle must go back through
// IntoField, never IntoContainer.
func (Translator[C, F, M]) FromField(field *Owned[F]) Handle[C, F, M] {
	return Handle[C, F, M]{alias: field.ReleaseAlias()}
}

// IntoField consumes an owning handle and returns ownership of the field itself. Only
// valid for handles whose field is the start of its own allocation.
func (Translator[C, F, M]) IntoField(handle Handle[C, F, M]) *Owned[F] {
	debugCheckNotBorrowed(handle.fieldSpan())
	return OwnAlias[F](handle.alias)
}

// FromContainerRef returns an unowned handle to the field of container. It claims
// nothing and checks nothing; it is meant for consumers that keep their own ownership
// bookkeeping. Prefer Borrow and BorrowMut elsewhere.
func (t Translator[C, F, M]) FromContainerRef(container *C) Handle[C, F, M] {
	debugCheckMember[C, F, M](container)
	return Handle[C, F, M]{alias: AliasOf(container).add(t.Offset())}
}

// FromFieldRef returns an unowned handle to field.
func (Translator[C, F, M]) FromFieldRef(field *F) Handle[C, F, M] {
	return Handle[C, F, M]{alias: AliasOf(field)}
}

// FromAlias reinterprets an alias as a handle. The caller asserts that a really is the
// address of an F embedded at member M's offset in a C.
func (Translator[C, F, M]) FromAlias(a Alias) Handle[C, F, M] {
	return Handle[C, F, M]{alias: a}
}

// OfAlias views alias storage in place as handle storage. Writes through the result are
// visible through a.
func (Translator[C, F, M]) OfAlias(a *Alias) *Handle[C, F, M] {
	return (*Handle[C, F, M])(unsafe.Pointer(a))
}

// AsAlias views handle storage in place as alias storage.
func (Translator[C, F, M]) AsAlias(handle *Handle[C, F, M]) *Alias {
	return (*Alias)(unsafe.Pointer(handle))
}

// Borrow returns a shared borrow of container's field. It panics if the container is
// mutably borrowed.
func (t Translator[C, F, M]) Borrow(container *C) *Borrow[C, F, M] {
	return newBorrow(t.FromContainerRef(container))
}

// BorrowMut returns an exclusive borrow of container's field. It panics if the container
// is borrowed in any way.
func (t Translator[C, F, M]) BorrowMut(container *C) *MutBorrow[C, F, M] {
	return newMutBorrow(t.FromContainerRef(container))
}

// BorrowField returns a shared borrow of a field reference. The lease is taken on the
// container the field is embedded in, so it conflicts with borrows made through the
// container.
func (t Translator[C, F, M]) BorrowField(field *F) *Borrow[C, F, M] {
	return newBorrow(t.FromFieldRef(field))
}

// BorrowFieldMut returns an exclusive borrow of a field reference.
func (t Translator[C, F, M]) BorrowFieldMut(field *F) *MutBorrow[C, F, M] {
	return newMutBorrow(t.FromFieldRef(field))
}
