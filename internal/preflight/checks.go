package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"reabatch/internal/deps"
	"reabatch/internal/rpp"
)

// CheckReaper verifies the REAPER executable can be found and run.
func CheckReaper(configured string) Result {
	const name = "REAPER"

	req := deps.Reaper(configured)
	status := deps.CheckBinaries([]deps.Requirement{req})[0]
	if !status.Available {
		detail := status.Detail
		if strings.TrimSpace(configured) == "" {
			detail += " (set reaper.executable or REABATCH_REAPER)"
		}
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: status.Command}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkReadWrite(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckProjectFile parses the project file without writing presets and
// reports how many usable FX chains it holds.
func CheckProjectFile(_ context.Context, path string) Result {
	const name = "Project file"

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	chains := rpp.ParseChains(string(data))
	if len(chains) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no tracks with FX chains found)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d FX chains)", path, len(chains))}
}

// CheckFXChainDir reports the standalone presets available in dir.
func CheckFXChainDir(dir string) Result {
	const name = "FX chain folder"

	presets, err := rpp.ListFolder(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err), Optional: true}
	}
	if len(presets) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (no .RfxChain files)", dir), Optional: true}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d presets)", dir, len(presets)), Optional: true}
}

// CheckRules reports whether any keyword rules are configured.
func CheckRules(count int) Result {
	const name = "Rules"
	if count == 0 {
		return Result{Name: name, Detail: "no [[rules]] configured"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d rules", count)}
}
