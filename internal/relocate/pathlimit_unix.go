//go:build unix

package relocate

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isPathTooLong(err error) bool {
	return errors.Is(err, unix.ENAMETOOLONG)
}
