// Package deps reports whether the external programs reabatch drives are
// installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"reabatch/internal/reaper"
)

// Requirement defines an external program reabatch relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Reaper describes the REAPER executable. The command is the configured
// path when set, else the first discovered install, else "reaper".
func Reaper(configured string) Requirement {
	req := Requirement{
		Name:        "REAPER",
		Description: "Required for batch conversion",
	}
	if path, err := reaper.Locate(configured); err == nil {
		req.Command = path
		return req
	}
	req.Command = strings.TrimSpace(configured)
	if req.Command == "" {
		req.Command = "reaper"
	}
	return req
}
