// Package ilist is an intrusive doubly linked list. Elements carry their own Link, so
// linking an element costs no allocation, and the list hands elements back as the
// containers they are rather than as wrappers.
//
// An element type embeds a Link and declares a member that locates it:
//
//	type job struct {
//		id   int
//		link ilist.Link
//	}
//
//	type jobLink struct{}
//
//	func (jobLink) Offset() uintptr          { return unsafe.Offsetof((*job)(nil).link) }
//	func (jobLink) Field(j *job) *ilist.Link { return &j.link }
//
//	var queue ilist.List[job, jobLink]
//	queue.PushBack(containerof.NewOf(job{id: 1}))
//
// The list owns the elements pushed onto it. Remove, PopFront, PopBack and Drain give
// that ownership back.
package ilist

import (
	"context"
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/containerof"
	"github.com/vkngwrapper/containerof/internal/utils"
	"golang.org/x/exp/slog"
)

// Link is the storage an element embeds to be part of a List. Both neighbours are kept as
// aliases of their own Link fields.
type Link struct {
	prev containerof.Alias
	next containerof.Alias
}

// List is an intrusive doubly linked list of C, linked through member M. The zero value is
// an empty list that does no locking; call Init to make it safe for concurrent use.
type List[C any, M containerof.Member[C, Link]] struct {
	mutex utils.OptionalRWMutex

	count int
	head  containerof.Alias
	tail  containerof.Alias
}

func (l *List[C, M]) translator() containerof.Translator[C, Link, M] {
	return containerof.Translator[C, Link, M]{}
}

func (l *List[C, M]) link(a containerof.Alias) *Link {
	return l.translator().FromAlias(a).AsField()
}

func (l *List[C, M]) container(a containerof.Alias) *C {
	if a.IsNil() {
		return nil
	}
	return l.translator().FromAlias(a).AsContainer()
}

// Init sets whether the list guards itself with a mutex. It must be called before the
// list is used.
func (l *List[C, M]) Init(useMutex bool) {
	l.mutex = utils.OptionalRWMutex{UseMutex: useMutex}
}

// Len returns the number of elements in the list.
func (l *List[C, M]) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.count
}

func (l *List[C, M]) IsEmpty() bool {
	return l.Len() == 0
}

// PushBack takes ownership of element and appends it.
func (l *List[C, M]) PushBack(element *containerof.Owned[C]) {
	h := l.translator().FromContainer(element)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.insertBetween(h.Alias(), l.tail, containerof.Alias{})
}

// PushFront takes ownership of element and prepends it.
func (l *List[C, M]) PushFront(element *containerof.Owned[C]) {
	h := l.translator().FromContainer(element)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.insertBetween(h.Alias(), containerof.Alias{}, l.head)
}

// InsertAfter takes ownership of element and links it directly after mark, which must
// already be in the list.
func (l *List[C, M]) InsertAfter(mark *C, element *containerof.Owned[C]) {
	h := l.translator().FromContainer(element)
	at := l.translator().FromContainerRef(mark).Alias()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.insertBetween(h.Alias(), at, l.link(at).next)
}

// InsertBefore takes ownership of element and links it directly before mark, which must
// already be in the list.
func (l *List[C, M]) InsertBefore(mark *C, element *containerof.Owned[C]) {
	h := l.translator().FromContainer(element)
	at := l.translator().FromContainerRef(mark).Alias()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.insertBetween(h.Alias(), l.link(at).prev, at)
}

func (l *List[C, M]) insertBetween(item, prev, next containerof.Alias) {
	link := l.link(item)
	link.prev = prev
	link.next = next

	if prev.IsNil() {
		l.head = item
	} else {
		l.link(prev).next = item
	}

	if next.IsNil() {
		l.tail = item
	} else {
		l.link(next).prev = item
	}

	l.count++
}

// Remove unlinks element, which must be in the list, and returns ownership of it.
func (l *List[C, M]) Remove(element *C) *containerof.Owned[C] {
	tr := l.translator()
	h := tr.FromContainerRef(element)

	l.mutex.Lock()
	l.unlink(h.Alias())
	l.mutex.Unlock()

	return tr.IntoContainer(h)
}

// PopFront unlinks the first element and returns ownership of it, or nil if the list is
// empty.
func (l *List[C, M]) PopFront() *containerof.Owned[C] {
	l.mutex.Lock()
	item := l.head
	if item.IsNil() {
		l.mutex.Unlock()
		return nil
	}
	l.unlink(item)
	l.mutex.Unlock()

	return l.translator().IntoContainer(l.translator().FromAlias(item))
}

// PopBack unlinks the last element and returns ownership of it, or nil if the list is
// empty.
func (l *List[C, M]) PopBack() *containerof.Owned[C] {
	l.mutex.Lock()
	item := l.tail
	if item.IsNil() {
		l.mutex.Unlock()
		return nil
	}
	l.unlink(item)
	l.mutex.Unlock()

	return l.translator().IntoContainer(l.translator().FromAlias(item))
}

func (l *List[C, M]) unlink(item containerof.Alias) {
	link := l.link(item)
	prev := link.prev
	next := link.next

	if prev.IsNil() {
		l.head = next
	} else {
		l.link(prev).next = next
	}

	if next.IsNil() {
		l.tail = prev
	} else {
		l.link(next).prev = prev
	}

	link.prev = containerof.Alias{}
	link.next = containerof.Alias{}

	l.count--
}

// Front returns the first element, or nil if the list is empty.
func (l *List[C, M]) Front() *C {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.container(l.head)
}

// Back returns the last element, or nil if the list is empty.
func (l *List[C, M]) Back() *C {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.container(l.tail)
}

// Next returns the element after element, or nil if element is the last one.
func (l *List[C, M]) Next(element *C) *C {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.container(l.translator().FromContainerRef(element).AsField().next)
}

// Prev returns the element before element, or nil if element is the first one.
func (l *List[C, M]) Prev(element *C) *C {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.container(l.translator().FromContainerRef(element).AsField().prev)
}

// Each calls visit for every element from front to back until visit returns false. The
// list must not be modified from inside visit.
func (l *List[C, M]) Each(visit func(element *C) bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	for item := l.head; !item.IsNil(); item = l.link(item).next {
		if !visit(l.container(item)) {
			return
		}
	}
}

// Drain unlinks every element from front to back and hands ownership of each to consume.
func (l *List[C, M]) Drain(consume func(element *containerof.Owned[C])) {
	for element := l.PopFront(); element != nil; element = l.PopFront() {
		consume(element)
	}
}

// Validate walks the list in both directions and checks that it is consistent with its
// element count.
func (l *List[C, M]) Validate() error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	declaredCount := l.count
	actualCount := 0

	prev := containerof.Alias{}
	for item := l.head; !item.IsNil(); item = l.link(item).next {
		if l.link(item).prev != prev {
			return errors.Errorf("element at %s lists %s as its previous element, but was reached from %s", item, l.link(item).prev, prev)
		}

		actualCount++
		if actualCount > declaredCount {
			return errors.Errorf("the list holds more elements than its listed count (%d), it may contain a cycle", declaredCount)
		}
		prev = item
	}

	if prev != l.tail {
		return errors.Errorf("the last element reached (%s) is not the list tail (%s)", prev, l.tail)
	}

	if declaredCount != actualCount {
		return errors.Errorf("the listed number of elements in the list (%d) does not match the actual number of elements (%d)", declaredCount, actualCount)
	}

	return nil
}

// BuildStatsString writes the list as a json object. describe, if not nil, is called for
// every element to add its own fields.
func (l *List[C, M]) BuildStatsString(writer *jwriter.Writer, describe func(json *jwriter.ObjectState, element *C)) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	obj := writer.Object()
	defer obj.End()

	obj.Name("Count").Int(l.count)
	obj.Name("Locked").Bool(l.mutex.Locking())
	elements := obj.Name("Elements").Array()
	for item := l.head; !item.IsNil(); item = l.link(item).next {
		o := elements.Object()
		o.Name("Address").String(item.String())
		if describe != nil {
			describe(&o, l.container(item))
		}
		o.End()
	}
	elements.End()
}

// Destroy checks that the list is empty. Every element still linked is logged as
// unreleased and an error is returned; the elements stay linked.
func (l *List[C, M]) Destroy() error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if l.count == 0 {
		return nil
	}

	logger := containerof.Logger()
	for item := l.head; !item.IsNil(); item = l.link(item).next {
		logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED ELEMENT] list destroyed with a linked element",
			slog.String("address", item.String()),
			slog.String("type", fmt.Sprintf("%T", l.container(item))),
		)
	}

	return errors.Errorf("%d elements were not removed before the destruction of this list", l.count)
}
