package probe

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/Vehask/plex-mount-health/internal/domain/health"
)

// Access verifies the running process can both read and write the mount,
// using access(2) so the effective uid/gid are what gets checked. Read-only
// and write-only failures are reported separately.
type Access struct {
	Path string
}

func (a *Access) Name() string { return "mount-accessibility" }

func (a *Access) Check(ctx context.Context) health.ProbeResult {
	res := health.ProbeResult{Name: a.Name()}

	if err := unix.Access(a.Path, unix.R_OK); err != nil {
		res.Message = fmt.Sprintf("mount %q is not readable: %v", a.Path, err)
		return res
	}
	if err := unix.Access(a.Path, unix.W_OK); err != nil {
		res.Message = fmt.Sprintf("mount %q is not writable: %v", a.Path, err)
		return res
	}

	res.Passed = true
	res.Message = "mount is accessible for read/write operations"
	return res
}
