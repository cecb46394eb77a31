package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"nropster/internal/config"
)

// Requirement defines an external program a run relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig lists the external programs the configured pipeline invokes.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "Decoder",
			Command:     cfg.Decoder.Command,
			Description: "Decodes the recorder stream during fetch",
		},
		{
			Name:        "Transcoder",
			Command:     cfg.Transcoder.Command,
			Description: "Converts fetched recordings to the edit format",
		},
	}
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
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the statuses of required programs that are not
// available.
func MissingRequired(statuses []Status) []Status {
	var out []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			out = append(out, status)
		}
	}
	return out
}
