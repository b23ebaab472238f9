// Package containerof turns a field embedded inside a larger struct into a standalone typed
// handle that can later be translated back to the struct that contains it. It is the
// foundation for intrusive data structures: the link nodes of a list or tree live inside
// the objects they organize, so linking an object never requires a second allocation.
//
// The package is built around a very small contract. A Member names one field of one
// container type by reporting the field's offset, which should always be computed with
// the null-base form of unsafe.Offsetof:
//
//	type nodeLink struct{}
//
//	func (nodeLink) Offset() uintptr           { return unsafe.Offsetof((*node)(nil).link) }
//	func (nodeLink) Field(n *node) *ilist.Link { return &n.link }
//
// Translator[C, F, M] then derives every container/field/alias conversion for that
// member, and Handle[C, F, M] is the typed handle itself: a single Alias, so handles and
// aliases are freely interchangeable.
//
// Ownership is modeled by Owned, which must be consumed exactly once. Go has no linear
// types, so an Owned that is garbage collected without being consumed is treated as a
// fatal contract violation: it is logged and the process panics. Borrow and MutBorrow
// are non-owning views; since Go has no borrow checker, they register a lease in a
// process-wide borrow table and the shared/exclusive rules are enforced at runtime.
//
// None of the address arithmetic is checked. Offsets are only meaningful inside the
// binary that computed them. Building with the debug_containerof tag adds a handful of
// consistency checks (member offsets are cross-checked against their field selectors,
// and claim sites are recorded for leak reports).
package containerof
