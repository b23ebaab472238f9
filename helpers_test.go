package containerof_test

import (
	"testing"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

type myStruct struct {
	field1 int32
	field2 int32
	field3 int32
}

type field1Member struct{}

func (field1Member) Offset() uintptr          { return unsafe.Offsetof((*myStruct)(nil).field1) }
func (field1Member) Field(c *myStruct) *int32 { return &c.field1 }

type field2Member struct{}

func (field2Member) Offset() uintptr          { return unsafe.Offsetof((*myStruct)(nil).field2) }
func (field2Member) Field(c *myStruct) *int32 { return &c.field2 }

type field3Member struct{}

func (field3Member) Offset() uintptr          { return unsafe.Offsetof((*myStruct)(nil).field3) }
func (field3Member) Field(c *myStruct) *int32 { return &c.field3 }

type payload struct {
	name  string
	score float64
}

type record struct {
	id      uint64
	flags   uint8
	payload payload
	tail    [3]uint16
}

type payloadMember struct{}

func (payloadMember) Offset() uintptr          { return unsafe.Offsetof((*record)(nil).payload) }
func (payloadMember) Field(r *record) *payload { return &r.payload }

func requirePanicIs(t *testing.T, target error, fn func()) {
	t.Helper()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")

		err, ok := r.(error)
		require.True(t, ok, "expected the panic value to be an error, got %T", r)
		require.True(t, cerrors.Is(err, target), "expected %v to wrap %v", err, target)
		require.True(t, cerrors.HasAssertionFailure(err))
	}()

	fn()
}
