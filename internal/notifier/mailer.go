package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vehask/plex-mount-health/internal/config"
	"github.com/Vehask/plex-mount-health/internal/domain/health"
)

// Mailer delivers alert and test notifications over SMTP. It implements
// health.Notifier. Every message gets a timestamp/hostname preamble and a
// subject prefix that differs between alerts and test messages.
type Mailer struct {
	addr           string
	auth           smtp.Auth
	useTLS         bool
	timeout        time.Duration
	from           string
	to             []string
	subjPrefix     string
	testSubjPrefix string
	dryRun         bool

	clock health.Clock
	log   *zap.Logger
}

func New(cfg config.SMTP, dryRun bool, clock health.Clock, log *zap.Logger) *Mailer {
	l := log.With(zap.String("component", "notifier.mailer"))

	password := resolvePassword(cfg, l)
	var auth smtp.Auth
	if cfg.User != "" || password != "" {
		auth = smtp.PlainAuth("", cfg.User, password, host(cfg.Addr))
	}

	return &Mailer{
		addr:           cfg.Addr,
		auth:           auth,
		useTLS:         cfg.UseTLS,
		timeout:        cfg.Timeout,
		from:           cfg.From,
		to:             cfg.To,
		subjPrefix:     cfg.SubjPrefix,
		testSubjPrefix: cfg.TestSubjPrefix,
		dryRun:         dryRun,
		clock:          clock,
		log:            l,
	}
}

// resolvePassword prefers the password file over the inline value. An
// unreadable file is logged and the inline value used instead.
func resolvePassword(cfg config.SMTP, log *zap.Logger) string {
	if cfg.PasswordFile != "" {
		b, err := os.ReadFile(cfg.PasswordFile)
		if err != nil {
			log.Error("failed to read smtp password file",
				zap.String("file", cfg.PasswordFile), zap.Error(err))
		} else if p := strings.TrimSpace(string(b)); p != "" {
			return p
		}
	}
	return cfg.Password
}

func (m *Mailer) Send(ctx context.Context, subject, body string, isTest bool) error {
	subj := m.subject(subject, isTest)
	full := m.composeBody(body)

	if m.dryRun {
		m.log.Info("dry run: would send notification",
			zap.String("subject", subj), zap.Bool("is_test", isTest))
		return nil
	}

	msg := []byte(
		"From: " + m.from + "\r\n" +
			"To: " + strings.Join(m.to, ", ") + "\r\n" +
			"Subject: " + subj + "\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"\r\n" + full + "\r\n")

	start := time.Now()
	log := m.log.With(
		zap.String("smtp_addr", m.addr),
		zap.Bool("tls", m.useTLS),
		zap.String("subject", subj),
		zap.Bool("is_test", isTest),
	)

	if m.useTLS {
		if err := m.sendTLS(msg); err != nil {
			log.Error("send failed (TLS)", zap.Error(err))
			return err
		}
		log.Info("notification sent (TLS)", zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	if err := smtp.SendMail(m.addr, m.auth, m.from, m.to, msg); err != nil {
		log.Error("send failed", zap.Error(err))
		return err
	}
	log.Info("notification sent", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (m *Mailer) sendTLS(msg []byte) error {
	dialer := net.Dialer{Timeout: m.timeout}
	conn, err := tls.DialWithDialer(&dialer, "tcp", m.addr, &tls.Config{ServerName: host(m.addr)})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	c, err := smtp.NewClient(conn, host(m.addr))
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer func() { _ = c.Close() }()

	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := c.Mail(m.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range m.to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}

func (m *Mailer) subject(s string, isTest bool) string {
	prefix := m.subjPrefix
	if isTest {
		prefix = m.testSubjPrefix
	}
	return strings.TrimSpace(prefix + " " + s)
}

// composeBody prepends the timestamp and hostname lines every notification
// carries.
func (m *Mailer) composeBody(body string) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	ts := m.clock.Now().Format("2006-01-02 15:04:05")
	return fmt.Sprintf("Timestamp: %s\nHostname: %s\n\n%s", ts, hostname, body)
}

func host(addr string) string {
	if i := strings.Index(addr, ":"); i >= 0 {
		return addr[:i]
	}
	return addr
}
