package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Vehask/plex-mount-health/internal/domain/health"
)

// ReadWrite performs a write/read round-trip inside a dedicated probe
// directory on the mount. The written content carries a fresh timestamp, the
// read-back must match byte for byte, and the temp file is removed on
// success. In dry-run mode nothing touches the filesystem.
type ReadWrite struct {
	Path   string
	Dir    string // probe subdirectory, created if absent
	File   string // fixed file name inside Dir
	DryRun bool
	Clock  health.Clock
	Log    *zap.Logger
}

func (rw *ReadWrite) Name() string { return "read-write-test" }

func (rw *ReadWrite) Check(ctx context.Context) health.ProbeResult {
	res := health.ProbeResult{Name: rw.Name()}

	dir := filepath.Join(rw.Path, rw.Dir)
	file := filepath.Join(dir, rw.File)

	if rw.DryRun {
		rw.Log.Info("dry run: would write and read back test file",
			zap.String("file", file))
		res.Passed = true
		res.Message = fmt.Sprintf("dry run: would write/read test file %q", file)
		return res
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Message = fmt.Sprintf("read/write test failed: create %q: %v", dir, err)
		return res
	}

	content := fmt.Sprintf("health check test - %s", rw.Clock.Now().Format(time.RFC3339Nano))
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		res.Message = fmt.Sprintf("read/write test failed: write %q: %v", file, err)
		return res
	}

	if err := verifyContent(file, content); err != nil {
		res.Message = fmt.Sprintf("read/write test failed: %v", err)
		return res
	}

	if err := os.Remove(file); err != nil {
		res.Message = fmt.Sprintf("read/write test failed: remove %q: %v", file, err)
		return res
	}

	res.Passed = true
	res.Message = "read/write test successful"
	return res
}

// verifyContent reads the file back and requires a byte-exact match.
func verifyContent(file, want string) error {
	got, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %q: %w", file, err)
	}
	if string(got) != want {
		return fmt.Errorf("content mismatch in %q", file)
	}
	return nil
}
