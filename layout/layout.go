// Package layout answers questions about how the compiler laid out a struct: the size and
// alignment of a type, and the byte offset of a named field inside a container.
//
// The offsets that matter for translation should be computed at compile time with the
// null-base form of unsafe.Offsetof, which never constructs or dereferences a container:
//
//	unsafe.Offsetof((*Container)(nil).Field)
//
// The reflection-based queries here compute the same numbers at runtime, from a type and a
// field name, for tooling, tests and diagnostics. Go does not randomize struct layout, but
// an offset is still only valid inside the binary that computed it. Do not persist offsets
// or send them to another process.
package layout

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
)

// Size returns T's size in bytes.
func Size[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// Align returns T's alignment in bytes.
func Align[T any]() int {
	var z T
	return int(unsafe.Alignof(z))
}

// Layout is the size and alignment of some type.
type Layout struct {
	Size, Align int
}

// Of returns the size and alignment of T.
func Of[T any]() Layout {
	return Layout{Size[T](), Align[T]()}
}

// Field describes one field of a struct. Padding is the number of bytes the compiler
// inserted between the end of the previous field and this one to align it.
type Field struct {
	Name    string
	Type    reflect.Type
	Offset  uintptr
	Size    uintptr
	Align   int
	Padding uintptr
}

// End returns the offset of the first byte past the field.
func (f Field) End() uintptr {
	return f.Offset + f.Size
}

// Fields returns every field of struct type C in declaration order. It panics if C is not
// a struct.
func Fields[C any]() []Field {
	t := typeOf[C]()
	if t.Kind() != reflect.Struct {
		panic(cerrors.Wrapf(ErrNotStruct, "%s", t))
	}

	fields := make([]Field, 0, t.NumField())
	var end uintptr
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		align := uintptr(f.Type.Align())
		fields = append(fields, Field{
			Name:    f.Name,
			Type:    f.Type,
			Offset:  f.Offset,
			Size:    f.Type.Size(),
			Align:   f.Type.Align(),
			Padding: AlignUp(end, align) - end,
		})
		end = f.Offset + f.Type.Size()
	}
	return fields
}

// TrailingPadding returns the bytes struct type C carries after its last field so that
// arrays of C stay aligned.
func TrailingPadding[C any]() uintptr {
	fields := Fields[C]()
	size := uintptr(Size[C]())
	if len(fields) == 0 {
		return size
	}
	return size - fields[len(fields)-1].End()
}

type offsetKey struct {
	container reflect.Type
	path      string
}

var (
	offsetCacheLock sync.RWMutex
	offsetCache     = swiss.NewMap[offsetKey, uintptr](16)
)

// OffsetOf returns the byte offset of the field named by path inside struct type C. Path
// is a field name, or a dot-separated chain of names through nested struct values (not
// pointers). No C is constructed.
func OffsetOf[C any](path string) (uintptr, error) {
	return offsetOf(typeOf[C](), path)
}

// OffsetOfType is OffsetOf for a reflect.Type.
func OffsetOfType(container reflect.Type, path string) (uintptr, error) {
	return offsetOf(container, path)
}

func offsetOf(container reflect.Type, path string) (uintptr, error) {
	key := offsetKey{container: container, path: path}

	offsetCacheLock.RLock()
	offset, ok := offsetCache.Get(key)
	offsetCacheLock.RUnlock()
	if ok {
		return offset, nil
	}

	offset, err := walkPath(container, path)
	if err != nil {
		return 0, err
	}

	offsetCacheLock.Lock()
	offsetCache.Put(key, offset)
	offsetCacheLock.Unlock()

	return offset, nil
}

func walkPath(container reflect.Type, path string) (uintptr, error) {
	var offset uintptr
	current := container

	for _, name := range strings.Split(path, ".") {
		if current.Kind() == reflect.Pointer {
			return 0, cerrors.Wrapf(ErrIndirectField, "%s in %s", path, container)
		}
		if current.Kind() != reflect.Struct {
			return 0, cerrors.Wrapf(ErrNotStruct, "%s while resolving %s in %s", current, path, container)
		}

		field, ok := current.FieldByName(name)
		if !ok {
			return 0, cerrors.Wrapf(ErrUnknownField, "%s in %s", name, current)
		}
		if len(field.Index) > 1 {
			// promoted through embedding; every hop has to be a value
			step := current
			var promoted uintptr
			for _, index := range field.Index {
				if step.Kind() == reflect.Pointer {
					return 0, cerrors.Wrapf(ErrIndirectField, "%s in %s", path, container)
				}
				sf := step.Field(index)
				promoted += sf.Offset
				step = sf.Type
			}
			offset += promoted
		} else {
			offset += field.Offset
		}
		current = field.Type
	}

	return offset, nil
}

// Verify checks that offset really is where selector finds the field inside a C. It is
// the runtime form of the property every member relies on:
// address(c.field) - address(c) == offset.
//
// An offset that is not a multiple of F's alignment can never be right and is reported
// as ErrMisaligned without looking at a C.
func Verify[C, F any](offset uintptr, selector func(*C) *F) error {
	align := uintptr(Align[F]())
	if err := CheckPow2(align, "alignment"); err != nil {
		return cerrors.Wrapf(err, "field of %s", typeOf[C]())
	}
	if AlignDown(offset, align) != offset {
		return cerrors.Wrapf(ErrMisaligned, "offset %d in %s for a field aligned to %d", offset, typeOf[C](), align)
	}

	container := new(C)
	actual := uintptr(unsafe.Pointer(selector(container))) - uintptr(unsafe.Pointer(container))
	if actual != offset {
		return cerrors.Newf("%s field is at offset %d, not %d", typeOf[C](), actual, offset)
	}
	return nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
