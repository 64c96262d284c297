package notifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vehask/plex-mount-health/internal/config"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func testCfg() config.SMTP {
	return config.SMTP{
		Enabled:        true,
		Addr:           "127.0.0.1:1", // nothing listens here
		From:           "monitor@example.com",
		To:             []string{"ops@example.com", "oncall@example.com"},
		Timeout:        time.Second,
		SubjPrefix:     "[Mount Alert]",
		TestSubjPrefix: "[Mount Test]",
	}
}

func newMailer(t *testing.T, cfg config.SMTP, dryRun bool) *Mailer {
	t.Helper()
	return New(cfg, dryRun, &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}, zap.NewNop())
}

func TestSubjectPrefixes(t *testing.T) {
	m := newMailer(t, testCfg(), false)

	assert.Equal(t, "[Mount Alert] disk gone", m.subject("disk gone", false))
	assert.Equal(t, "[Mount Test] hello", m.subject("hello", true))
}

func TestComposeBody_Preamble(t *testing.T) {
	m := newMailer(t, testCfg(), false)

	body := m.composeBody("something broke")

	hostname, _ := os.Hostname()
	assert.Contains(t, body, "Timestamp: 2025-06-01 12:00:00")
	assert.Contains(t, body, "Hostname: "+hostname)
	assert.Contains(t, body, "\n\nsomething broke")
}

func TestSend_DryRunSkipsTransport(t *testing.T) {
	// the configured addr refuses connections, so a nil error proves no
	// dial happened
	m := newMailer(t, testCfg(), true)

	err := m.Send(context.Background(), "subject", "body", false)

	assert.NoError(t, err)
}

func TestSend_TransportErrorSurfaces(t *testing.T) {
	m := newMailer(t, testCfg(), false)

	err := m.Send(context.Background(), "subject", "body", false)

	assert.Error(t, err)
}

func TestResolvePassword_FileWins(t *testing.T) {
	file := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(file, []byte("  from-file\n"), 0o600))

	cfg := testCfg()
	cfg.Password = "inline"
	cfg.PasswordFile = file

	assert.Equal(t, "from-file", resolvePassword(cfg, zap.NewNop()))
}

func TestResolvePassword_FallsBackToInline(t *testing.T) {
	cfg := testCfg()
	cfg.Password = "inline"
	cfg.PasswordFile = filepath.Join(t.TempDir(), "missing")

	assert.Equal(t, "inline", resolvePassword(cfg, zap.NewNop()))
}

func TestResolvePassword_EmptyFileFallsBack(t *testing.T) {
	file := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(file, []byte("   \n"), 0o600))

	cfg := testCfg()
	cfg.Password = "inline"
	cfg.PasswordFile = file

	assert.Equal(t, "inline", resolvePassword(cfg, zap.NewNop()))
}

func TestHostSplitsPort(t *testing.T) {
	assert.Equal(t, "smtp.example.com", host("smtp.example.com:587"))
	assert.Equal(t, "smtp.example.com", host("smtp.example.com"))
}
