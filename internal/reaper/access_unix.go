//go:build !windows

package reaper

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func checkRunnable(path string) error {
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("%s is not executable: %w", path, err)
	}
	return nil
}
