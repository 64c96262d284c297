package probe

import (
	"context"
	"fmt"
	"os"

	"github.com/moby/sys/mountinfo"

	"github.com/Vehask/plex-mount-health/internal/domain/health"
)

// Mount verifies the path exists and is a real mount point per the kernel
// mount table. A plain directory left behind by an unmounted share fails.
type Mount struct {
	Path string
}

func (m *Mount) Name() string { return "mount-existence" }

func (m *Mount) Check(ctx context.Context) health.ProbeResult {
	res := health.ProbeResult{Name: m.Name()}

	if _, err := os.Stat(m.Path); err != nil {
		if os.IsNotExist(err) {
			res.Message = fmt.Sprintf("mount path %q does not exist", m.Path)
		} else {
			res.Message = fmt.Sprintf("error checking mount path %q: %v", m.Path, err)
		}
		return res
	}

	mounted, err := mountinfo.Mounted(m.Path)
	if err != nil {
		res.Message = fmt.Sprintf("error reading mount table for %q: %v", m.Path, err)
		return res
	}
	if !mounted {
		res.Message = fmt.Sprintf("%q exists but is not mounted", m.Path)
		return res
	}

	res.Passed = true
	res.Message = "mount point exists and is mounted"
	return res
}
