package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vehask/plex-mount-health/internal/domain/health"
)

// Subdirs verifies every configured relative directory exists under the
// mount. All missing entries are reported, not just the first. An empty list
// is a trivial pass.
type Subdirs struct {
	Path     string
	Required []string
}

func (s *Subdirs) Name() string { return "required-directories" }

func (s *Subdirs) Check(ctx context.Context) health.ProbeResult {
	res := health.ProbeResult{Name: s.Name()}

	if len(s.Required) == 0 {
		res.Passed = true
		res.Message = "no required directories configured"
		return res
	}

	var missing []string
	for _, name := range s.Required {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.Path, name)); err != nil {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		res.Message = fmt.Sprintf("missing required directories: %s", strings.Join(missing, ", "))
		return res
	}

	res.Passed = true
	res.Message = "all required directories exist"
	return res
}
