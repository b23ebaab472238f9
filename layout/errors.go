package layout

import cerrors "github.com/cockroachdb/errors"

// PowerOfTwoError is the error returned from CheckPow2 if the number being tested is not a power of two
var PowerOfTwoError error = cerrors.New("number must be a power of two")

// ErrNotStruct is returned when an offset is requested from a type that is not a struct.
var ErrNotStruct error = cerrors.New("type is not a struct")

// ErrUnknownField is returned when a field path names a field the struct does not have.
var ErrUnknownField error = cerrors.New("no such field")

// ErrIndirectField is returned when a field path crosses a pointer. A field reached
// through a pointer does not live inside the container and has no offset.
var ErrIndirectField error = cerrors.New("field path crosses a pointer")

// ErrMisaligned is returned from Verify when an offset is not a multiple of the field's
// alignment.
var ErrMisaligned error = cerrors.New("offset is not aligned for the field type")
