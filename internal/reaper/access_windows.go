//go:build windows

package reaper

import (
	"fmt"
	"path/filepath"
	"strings"
)

func checkRunnable(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".exe") {
		return fmt.Errorf("%s is not an .exe", path)
	}
	return nil
}
