package containerof

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// span is the byte range [base, end) a lease covers.
type span struct {
	base uintptr
	end  uintptr
}

// spanOf returns the range of size bytes at base. Zero-sized values still occupy one byte
// of the table so that they can conflict with each other.
func spanOf(base, size uintptr) span {
	if size == 0 {
		size = 1
	}
	return span{base: base, end: base + size}
}

func (s span) overlaps(other span) bool {
	return s.base < other.end && other.base < s.end
}

func (s span) less(other span) bool {
	if s.base != other.base {
		return s.base < other.base
	}
	return s.end < other.end
}

func (s span) String() string {
	return fmt.Sprintf("[%#x, %#x)", s.base, s.end)
}

type borrowState struct {
	shared    int
	exclusive bool
}

// borrowTable tracks live leases by the memory range they cover. It stands in for static
// borrow checking: any number of shared leases may overlap, an exclusive lease may not
// overlap any other lease. Ranges nest when one container is embedded in another, so a
// lease on the outer container conflicts with an exclusive lease on the inner one.
type borrowTable struct {
	mutex  sync.Mutex
	leases *swiss.Map[span, *borrowState]

	// spans holds the keys of leases ordered by base, widest is the largest span ever
	// registered. Together they bound the scan for overlapping leases.
	spans  []span
	widest uintptr
}

var borrows = newBorrowTable()

func newBorrowTable() *borrowTable {
	return &borrowTable{
		leases: swiss.NewMap[span, *borrowState](64),
	}
}

// overlapping calls visit for every lease overlapping s until visit returns true.
func (t *borrowTable) overlapping(s span, visit func(other span, state *borrowState) bool) {
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].base >= s.end })
	for i--; i >= 0; i-- {
		other := t.spans[i]
		if other.base+t.widest <= s.base {
			return
		}
		if !other.overlaps(s) {
			continue
		}

		state, _ := t.leases.Get(other)
		if visit(other, state) {
			return
		}
	}
}

func (t *borrowTable) insert(s span, state *borrowState) {
	t.leases.Put(s, state)

	i := sort.Search(len(t.spans), func(i int) bool { return !t.spans[i].less(s) })
	t.spans = append(t.spans, span{})
	copy(t.spans[i+1:], t.spans[i:])
	t.spans[i] = s

	if width := s.end - s.base; width > t.widest {
		t.widest = width
	}
}

func (t *borrowTable) remove(s span) {
	t.leases.Delete(s)

	i := sort.Search(len(t.spans), func(i int) bool { return !t.spans[i].less(s) })
	if i < len(t.spans) && t.spans[i] == s {
		t.spans = append(t.spans[:i], t.spans[i+1:]...)
	}
}

func (t *borrowTable) acquire(s span, exclusive bool) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	var conflict error
	t.overlapping(s, func(other span, state *borrowState) bool {
		switch {
		case state.exclusive:
			conflict = contractViolation(ErrBorrowConflict, "memory at %s is already mutably borrowed as %s", s, other)
		case exclusive:
			conflict = contractViolation(ErrBorrowConflict, "memory at %s has %d live shared borrows as %s", s, state.shared, other)
		default:
			return false
		}
		return true
	})
	if conflict != nil {
		return conflict
	}

	state, ok := t.leases.Get(s)
	if !ok {
		state = &borrowState{}
		t.insert(s, state)
	}

	if exclusive {
		state.exclusive = true
		stats.exclusiveBorrows.Add(1)
		return nil
	}

	state.shared++
	stats.sharedBorrows.Add(1)
	return nil
}

func (t *borrowTable) release(s span, exclusive bool) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	state, ok := t.leases.Get(s)
	if !ok {
		return contractViolation(ErrReleased, "no borrow is registered for %s", s)
	}

	if exclusive {
		if !state.exclusive {
			return contractViolation(ErrReleased, "memory at %s is not mutably borrowed", s)
		}
		state.exclusive = false
		stats.exclusiveBorrows.Add(-1)
	} else {
		if state.shared == 0 {
			return contractViolation(ErrReleased, "memory at %s has no shared borrows", s)
		}
		state.shared--
		stats.sharedBorrows.Add(-1)
	}

	if state.shared == 0 && !state.exclusive {
		t.remove(s)
	}
	return nil
}

// state sums the leases covering the byte at address.
func (t *borrowTable) state(address uintptr) (shared int, exclusive bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.overlapping(spanOf(address, 1), func(_ span, state *borrowState) bool {
		shared += state.shared
		exclusive = exclusive || state.exclusive
		return false
	})
	return shared, exclusive
}

// borrowed reports whether any lease overlaps s.
func (t *borrowTable) borrowed(s span) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	found := false
	t.overlapping(s, func(span, *borrowState) bool {
		found = true
		return true
	})
	return found
}

func (t *borrowTable) writeLeases(json *jwriter.ArrayState) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, s := range t.spans {
		state, _ := t.leases.Get(s)
		obj := json.Object()
		obj.Name("Address").String(fmt.Sprintf("%#x", s.base))
		obj.Name("Size").Int(int(s.end - s.base))
		obj.Name("Shared").Int(state.shared)
		obj.Name("Exclusive").Bool(state.exclusive)
		obj.End()
	}
}

// BorrowState reports the live leases covering the byte a points at: the number of shared
// borrows, and whether any exclusive borrow covers it.
func BorrowState(a Alias) (shared int, exclusive bool) {
	return borrows.state(a.Address())
}
