package containerof

// Member is the minimal contract a concrete field handle supplies. It names one field of
// type F inside container type C.
//
// Offset must return the field's byte offset, computed with the null-base form of
// unsafe.Offsetof, which is a compile-time constant and never touches memory:
//
//	func (taskLink) Offset() uintptr { return unsafe.Offsetof((*task)(nil).link) }
//
// Field selects the same field from a live container. Its signature binds the member to
// its container and field types, so a member cannot be instantiated with the wrong pair.
// The translation code never calls it in ordinary builds; debug_containerof builds use it
// to cross-check Offset.
//
// Implementations are expected to be empty structs. The remaining two pieces of the
// contract, building a handle from an Alias and viewing a handle as an Alias, are
// supplied by Handle itself.
type Member[C, F any] interface {
	Offset() uintptr
	Field(container *C) *F
}
