package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

var clock = &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

func TestMount_MissingPath(t *testing.T) {
	m := &Mount{Path: filepath.Join(t.TempDir(), "nope")}

	res := m.Check(context.Background())

	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "does not exist")
}

func TestMount_DirectoryButNotMounted(t *testing.T) {
	m := &Mount{Path: t.TempDir()}

	res := m.Check(context.Background())

	assert.False(t, res.Passed, "a plain directory is not a mount")
	assert.Contains(t, res.Message, "not mounted")
}

func TestMount_RootIsMounted(t *testing.T) {
	m := &Mount{Path: "/"}

	res := m.Check(context.Background())

	assert.True(t, res.Passed)
}

func TestAccess_ReadWriteDir(t *testing.T) {
	a := &Access{Path: t.TempDir()}

	res := a.Check(context.Background())

	assert.True(t, res.Passed)
}

func TestAccess_MissingPath(t *testing.T) {
	a := &Access{Path: filepath.Join(t.TempDir(), "nope")}

	res := a.Check(context.Background())

	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "not readable")
}

func TestAccess_ReadOnlyDirNotWritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	res := (&Access{Path: dir}).Check(context.Background())

	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "not writable")
}

func newRW(path string, dryRun bool) *ReadWrite {
	return &ReadWrite{
		Path:   path,
		Dir:    ".health_check",
		File:   "health_check.tmp",
		DryRun: dryRun,
		Clock:  clock,
		Log:    zap.NewNop(),
	}
}

func TestReadWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	rw := newRW(dir, false)

	res := rw.Check(context.Background())

	require.True(t, res.Passed, res.Message)
	assert.Equal(t, "read/write test successful", res.Message)

	_, err := os.Stat(filepath.Join(dir, ".health_check", "health_check.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file removed on success")
}

func TestReadWrite_UnwritableTarget(t *testing.T) {
	// NUL is invalid in a path on every platform, so MkdirAll must fail
	rw := newRW(string([]byte{0}), false)

	res := rw.Check(context.Background())

	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "read/write test failed")
}

func TestReadWrite_DryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	rw := newRW(dir, true)

	res := rw.Check(context.Background())

	assert.True(t, res.Passed)
	assert.Contains(t, res.Message, "dry run")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not create the probe directory")
}

func TestVerifyContent_Mismatch(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, []byte("corrupted"), 0o644))

	err := verifyContent(file, "expected")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "content mismatch")
}

func TestVerifyContent_Match(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, []byte("same"), 0o644))

	assert.NoError(t, verifyContent(file, "same"))
}

func TestSubdirs_EmptyListIsTrivialPass(t *testing.T) {
	s := &Subdirs{Path: t.TempDir()}

	res := s.Check(context.Background())

	assert.True(t, res.Passed)
	assert.Equal(t, "no required directories configured", res.Message)
}

func TestSubdirs_ReportsOnlyMissingEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "movies"), 0o755))

	s := &Subdirs{Path: dir, Required: []string{"movies", "tv"}}
	res := s.Check(context.Background())

	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "tv")
	assert.NotContains(t, res.Message, "movies")
}

func TestSubdirs_ReportsAllMissing(t *testing.T) {
	s := &Subdirs{Path: t.TempDir(), Required: []string{"a", "b", "c"}}

	res := s.Check(context.Background())

	assert.False(t, res.Passed)
	assert.Equal(t, "missing required directories: a, b, c", res.Message)
}

func TestSubdirs_AllPresent(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"movies", "tv"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0o755))
	}

	res := (&Subdirs{Path: dir, Required: []string{"movies", "tv"}}).Check(context.Background())

	assert.True(t, res.Passed)
}
