//go:build windows

package relocate

import (
	"errors"

	"golang.org/x/sys/windows"
)

func isPathTooLong(err error) bool {
	return errors.Is(err, windows.ERROR_FILENAME_EXCED_RANGE)
}
