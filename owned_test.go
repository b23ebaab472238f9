package containerof_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/containerof"
)

func TestOwnRelease(t *testing.T) {
	value := &myStruct{field1: 5}
	owned := containerof.Own(value)

	require.True(t, owned.Live())
	require.Equal(t, uintptr(unsafe.Pointer(value)), owned.Address())
	require.Same(t, value, owned.Peek())

	released := owned.Release()
	require.Same(t, value, released)
	require.False(t, owned.Live())
}

func TestOwnAlias(t *testing.T) {
	value := &myStruct{field3: 9}

	owned := containerof.OwnAlias[myStruct](containerof.AliasOf(value))
	a := owned.ReleaseAlias()
	require.Equal(t, containerof.AliasOf(value), a)

	reclaimed := containerof.OwnAlias[myStruct](a)
	require.Equal(t, int32(9), reclaimed.Release().field3)
}

func TestNewZeroes(t *testing.T) {
	owned := containerof.New[record]()
	require.Equal(t, record{}, *owned.Release())
}

func TestDoubleReleasePanics(t *testing.T) {
	testCases := map[string]func(owned *containerof.Owned[myStruct]){
		"Release":      func(owned *containerof.Owned[myStruct]) { owned.Release() },
		"ReleaseAlias": func(owned *containerof.Owned[myStruct]) { owned.ReleaseAlias() },
		"Address":      func(owned *containerof.Owned[myStruct]) { owned.Address() },
		"Peek":         func(owned *containerof.Owned[myStruct]) { owned.Peek() },
	}

	for name, second := range testCases {
		t.Run(name, func(t *testing.T) {
			owned := containerof.New[myStruct]()
			owned.Release()

			requirePanicIs(t, containerof.ErrReleased, func() {
				second(owned)
			})
		})
	}
}

func TestTranslatingConsumesOwnership(t *testing.T) {
	var tr containerof.Translator[myStruct, int32, field1Member]

	owned := containerof.New[myStruct]()
	h := tr.FromContainer(owned)

	requirePanicIs(t, containerof.ErrReleased, func() {
		tr.FromContainer(owned)
	})

	tr.IntoContainer(h).Release()
}

func TestStatisticsCountOwnership(t *testing.T) {
	before := containerof.ReadStatistics()

	first := containerof.New[myStruct]()
	second := containerof.New[myStruct]()
	first.Release()

	during := containerof.ReadStatistics()
	require.Equal(t, before.OwnedClaimed+2, during.OwnedClaimed)
	require.Equal(t, before.OwnedReleased+1, during.OwnedReleased)
	require.Equal(t, before.OwnedLive()+1, during.OwnedLive())

	second.ReleaseAlias()
	after := containerof.ReadStatistics()
	require.Equal(t, before.OwnedLive(), after.OwnedLive())
}
