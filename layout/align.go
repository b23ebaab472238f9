package layout

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

func CheckPow2[T constraints.Integer](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two.
func AlignUp[T constraints.Integer](value T, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignDown rounds value down to a multiple of alignment, which must be a power of two.
func AlignDown[T constraints.Integer](value T, alignment T) T {
	return value &^ (alignment - 1)
}
