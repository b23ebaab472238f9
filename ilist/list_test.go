package ilist_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/containerof"
	"github.com/vkngwrapper/containerof/ilist"
	"golang.org/x/exp/slog"
)

type job struct {
	id       int
	priority uint8
	link     ilist.Link
	name     string
}

type jobLink struct{}

func (jobLink) Offset() uintptr          { return unsafe.Offsetof((*job)(nil).link) }
func (jobLink) Field(j *job) *ilist.Link { return &j.link }

func newJob(id int) *containerof.Owned[job] {
	return containerof.NewOf(job{id: id})
}

func ids(l *ilist.List[job, jobLink]) []int {
	var result []int
	l.Each(func(j *job) bool {
		result = append(result, j.id)
		return true
	})
	return result
}

func reverseIds(l *ilist.List[job, jobLink]) []int {
	var result []int
	for j := l.Back(); j != nil; j = l.Prev(j) {
		result = append(result, j.id)
	}
	return result
}

func drain(t *testing.T, l *ilist.List[job, jobLink]) {
	l.Drain(func(element *containerof.Owned[job]) {
		element.Release()
	})
	require.True(t, l.IsEmpty())
	require.NoError(t, l.Validate())
	require.NoError(t, l.Destroy())
}

func TestPushAndPop(t *testing.T) {
	var l ilist.List[job, jobLink]

	require.Nil(t, l.Front())
	require.Nil(t, l.Back())
	require.Nil(t, l.PopFront())
	require.Nil(t, l.PopBack())

	l.PushBack(newJob(2))
	l.PushBack(newJob(3))
	l.PushFront(newJob(1))

	require.Equal(t, 3, l.Len())
	require.Equal(t, []int{1, 2, 3}, ids(&l))
	require.Equal(t, []int{3, 2, 1}, reverseIds(&l))
	require.NoError(t, l.Validate())

	front := l.PopFront()
	require.Equal(t, 1, front.Peek().id)
	front.Release()

	back := l.PopBack()
	require.Equal(t, 3, back.Release().id)

	require.Equal(t, []int{2}, ids(&l))
	require.Same(t, l.Front(), l.Back())
	require.NoError(t, l.Validate())

	drain(t, &l)
}

func TestElementsKeepTheirAddress(t *testing.T) {
	var l ilist.List[job, jobLink]

	owned := containerof.NewOf(job{id: 7, name: "seven"})
	address := owned.Address()
	l.PushBack(owned)

	require.Equal(t, address, uintptr(unsafe.Pointer(l.Front())))
	require.Equal(t, "seven", l.Front().name)

	popped := l.PopFront()
	require.Equal(t, address, popped.Address())
	popped.Release()
}

func TestInsertAndRemove(t *testing.T) {
	var l ilist.List[job, jobLink]

	l.PushBack(newJob(1))
	l.PushBack(newJob(4))

	first := l.Front()
	last := l.Back()

	l.InsertAfter(first, newJob(2))
	l.InsertBefore(last, newJob(3))
	l.InsertAfter(last, newJob(5))
	l.InsertBefore(first, newJob(0))

	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, ids(&l))
	require.Equal(t, []int{5, 4, 3, 2, 1, 0}, reverseIds(&l))
	require.NoError(t, l.Validate())

	middle := l.Next(l.Next(first))
	require.Equal(t, 3, middle.id)

	removed := l.Remove(middle).Release()
	require.Same(t, middle, removed)
	require.Equal(t, []int{0, 1, 2, 4, 5}, ids(&l))
	require.NoError(t, l.Validate())

	l.Remove(l.Front()).Release()
	l.Remove(l.Back()).Release()
	require.Equal(t, []int{1, 2, 4}, ids(&l))
	require.Equal(t, []int{4, 2, 1}, reverseIds(&l))
	require.NoError(t, l.Validate())

	drain(t, &l)
}

func TestRemovedElementCanBeRelinked(t *testing.T) {
	var first ilist.List[job, jobLink]
	var second ilist.List[job, jobLink]

	first.PushBack(newJob(1))
	first.PushBack(newJob(2))

	moved := first.Remove(first.Front())
	second.PushBack(moved)

	require.Equal(t, []int{2}, ids(&first))
	require.Equal(t, []int{1}, ids(&second))
	require.NoError(t, first.Validate())
	require.NoError(t, second.Validate())

	drain(t, &first)
	drain(t, &second)
}

func TestEachStopsEarly(t *testing.T) {
	var l ilist.List[job, jobLink]
	for i := 0; i < 5; i++ {
		l.PushBack(newJob(i))
	}

	visited := 0
	l.Each(func(j *job) bool {
		visited++
		return j.id < 2
	})
	require.Equal(t, 3, visited)

	drain(t, &l)
}

func TestDrainOrder(t *testing.T) {
	var l ilist.List[job, jobLink]
	for i := 0; i < 4; i++ {
		l.PushBack(newJob(i))
	}

	var drained []int
	l.Drain(func(element *containerof.Owned[job]) {
		drained = append(drained, element.Release().id)
	})

	require.Equal(t, []int{0, 1, 2, 3}, drained)
	require.Equal(t, 0, l.Len())
}

func TestDestroyNonEmpty(t *testing.T) {
	var logs bytes.Buffer
	containerof.SetLogger(slog.New(slog.NewTextHandler(&logs)))
	defer containerof.SetLogger(nil)

	var l ilist.List[job, jobLink]
	l.PushBack(newJob(1))
	l.PushBack(newJob(2))

	err := l.Destroy()
	require.EqualError(t, err, "2 elements were not removed before the destruction of this list")
	require.Equal(t, 2, l.Len())

	out := logs.String()
	require.Equal(t, 2, strings.Count(out, "[UNRELEASED ELEMENT]"))
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, "type=*ilist_test.job")
	require.Contains(t, out, "address="+containerof.AliasOf(&l.Front().link).String())

	drain(t, &l)
}

func TestBuildStatsString(t *testing.T) {
	var l ilist.List[job, jobLink]
	l.PushBack(containerof.NewOf(job{id: 1, name: "one"}))
	l.PushBack(containerof.NewOf(job{id: 2, name: "two"}))

	writer := jwriter.NewWriter()
	l.BuildStatsString(&writer, func(json *jwriter.ObjectState, element *job) {
		json.Name("Id").Int(element.id)
		json.Name("Name").String(element.name)
	})
	require.NoError(t, writer.Error())

	var dump struct {
		Count    int
		Locked   bool
		Elements []struct {
			Address string
			Id      int
			Name    string
		}
	}
	require.NoError(t, json.Unmarshal(writer.Bytes(), &dump))
	require.Equal(t, 2, dump.Count)
	require.False(t, dump.Locked)
	require.Len(t, dump.Elements, 2)
	require.Equal(t, "one", dump.Elements[0].Name)
	require.Equal(t, 2, dump.Elements[1].Id)
	require.NotEmpty(t, dump.Elements[0].Address)

	drain(t, &l)
}

func TestConcurrentPush(t *testing.T) {
	var l ilist.List[job, jobLink]
	l.Init(true)

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if i%2 == 0 {
					l.PushBack(newJob(w*perWorker + i))
				} else {
					l.PushFront(newJob(w*perWorker + i))
				}
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, workers*perWorker, l.Len())
	require.NoError(t, l.Validate())

	seen := make(map[int]bool)
	l.Each(func(j *job) bool {
		seen[j.id] = true
		return true
	})
	require.Len(t, seen, workers*perWorker)

	drain(t, &l)
}
