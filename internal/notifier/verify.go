package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"go.uber.org/zap"
)

// Verify exercises the SMTP path step by step without sending a message:
// DNS resolution, connect, STARTTLS when offered, authentication when
// credentials are configured. Each step is logged so a misconfiguration is
// easy to pin down.
func (m *Mailer) Verify(ctx context.Context) error {
	log := m.log.With(zap.String("smtp_addr", m.addr))

	h := host(m.addr)
	addrs, err := net.DefaultResolver.LookupHost(ctx, h)
	if err != nil {
		return fmt.Errorf("dns resolution for %q: %w", h, err)
	}
	log.Info("dns resolved", zap.Strings("addrs", addrs))

	dialer := net.Dialer{Timeout: m.timeout}

	if m.useTLS {
		conn, err := tls.DialWithDialer(&dialer, "tcp", m.addr, &tls.Config{ServerName: h})
		if err != nil {
			return fmt.Errorf("tls connect to %s: %w", m.addr, err)
		}
		c, err := smtp.NewClient(conn, h)
		if err != nil {
			return fmt.Errorf("smtp handshake: %w", err)
		}
		defer func() { _ = c.Close() }()
		log.Info("connected (TLS)")

		if err := m.verifyAuth(c, log); err != nil {
			return err
		}
		return c.Quit()
	}

	conn, err := dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.addr, err)
	}
	c, err := smtp.NewClient(conn, h)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Close() }()
	log.Info("connected")

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: h}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
		log.Info("starttls established")
	}

	if err := m.verifyAuth(c, log); err != nil {
		return err
	}
	return c.Quit()
}

func (m *Mailer) verifyAuth(c *smtp.Client, log *zap.Logger) error {
	if m.auth == nil {
		return nil
	}
	if ok, _ := c.Extension("AUTH"); !ok {
		log.Warn("server does not advertise AUTH, skipping authentication")
		return nil
	}
	if err := c.Auth(m.auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	log.Info("authentication successful")
	return nil
}
