//go:build debug_containerof

package containerof

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
)

// DebugChecks reports whether the package was built with the debug_containerof tag.
const DebugChecks = true

// claimSite records where an Owned was claimed so that a leak report can point at it.
// This method returns nil unless the debug_containerof build tag is present.
func claimSite() error {
	return cerrors.NewWithDepth(2, "ownership claimed here")
}

// debugCheckMember panics if member M's Offset disagrees with the address its Field
// selector produces for container. This method no-ops unless the debug_containerof build
// tag is present.
func debugCheckMember[C, F any, M Member[C, F]](container *C) {
	if container == nil {
		return
	}

	var member M
	actual := uintptr(unsafe.Pointer(member.Field(container))) - uintptr(unsafe.Pointer(container))
	if actual != member.Offset() {
		panic(cerrors.AssertionFailedf("member %T reports offset %d but its field lives at offset %d", member, member.Offset(), actual))
	}
}

// debugCheckNotBorrowed panics if any live borrow overlaps s. Moving ownership out of
// memory that is still borrowed is a contract violation. This method no-ops unless the
// debug_containerof build tag is present.
func debugCheckNotBorrowed(s span) {
	if borrows.borrowed(s) {
		panic(contractViolation(ErrBorrowConflict, "ownership moved out of %s while it is borrowed", s))
	}
}
