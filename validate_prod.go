//go:build !debug_containerof

package containerof

// DebugChecks reports whether the package was built with the debug_containerof tag.
const DebugChecks = false

// claimSite records where an Owned was claimed so that a leak report can point at it.
// This method returns nil unless the debug_containerof build tag is present.
func claimSite() error {
	return nil
}

// debugCheckMember panics if member M's Offset disagrees with the address its Field
// selector produces for container. This method no-ops unless the debug_containerof build
// tag is present.
func debugCheckMember[C, F any, M Member[C, F]](container *C) {
}

// debugCheckNotBorrowed panics if any live borrow overlaps s. This method no-ops unless
// the debug_containerof build tag is present.
func debugCheckNotBorrowed(s span) {
}
