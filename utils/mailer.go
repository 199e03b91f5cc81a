package utils

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"maildraft/config"
)

var (
	// ErrMailerNotConfigured means host, username, password or from-address
	// is missing. Checked before any network activity.
	ErrMailerNotConfigured = errors.New("smtp transport not configured")

	// ErrUnsupportedSMTPPort means the configured port maps to no known TLS
	// strategy. The transport refuses to dial rather than guess.
	ErrUnsupportedSMTPPort = errors.New("unsupported smtp port")
)

// Mailer sends a composed message over SMTP. The TLS strategy is selected by
// port: 465 uses an implicit-TLS connection, 587 upgrades a plaintext
// connection with STARTTLS. A non-nil error carries the diagnostic cause;
// callers translate it into a failed-status transition instead of
// propagating it.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration

	// TLSConfig overrides the default (ServerName = Host); tests inject
	// their own roots here.
	TLSConfig *tls.Config

	// dialAddr overrides the host:port dial target; tests point it at a
	// local listener.
	dialAddr string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		Timeout:  cfg.SMTPTimeout,
	}
}

// Configured reports whether every field required for a send is present.
func (m *Mailer) Configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != "" && m.From != ""
}

// Send delivers a single-part text message with Subject, From and To
// headers to one recipient. The whole session shares one deadline.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Configured() {
		return ErrMailerNotConfigured
	}

	client, err := m.connect()
	if err != nil {
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := m.compose(to, subject, body).WriteTo(wc); err != nil {
		wc.Close()
		return fmt.Errorf("writing message failed: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("closing message failed: %w", err)
	}

	return client.Quit()
}

// connect dials the server with the port's TLS strategy and returns a client
// that has completed its handshakes.
func (m *Mailer) connect() (*smtp.Client, error) {
	addr := m.dialAddr
	if addr == "" {
		addr = net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	}

	switch m.Port {
	case 465:
		conn, err := net.DialTimeout("tcp", addr, m.Timeout)
		if err != nil {
			return nil, fmt.Errorf("smtp connection failed: %w", err)
		}
		conn.SetDeadline(time.Now().Add(m.Timeout))

		tlsConn := tls.Client(conn, m.tlsConfig())
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("tls handshake failed: %w", err)
		}
		client, err := smtp.NewClient(tlsConn, m.Host)
		if err != nil {
			tlsConn.Close()
			return nil, fmt.Errorf("smtp handshake failed: %w", err)
		}
		return client, nil

	case 587:
		conn, err := net.DialTimeout("tcp", addr, m.Timeout)
		if err != nil {
			return nil, fmt.Errorf("smtp connection failed: %w", err)
		}
		conn.SetDeadline(time.Now().Add(m.Timeout))

		client, err := smtp.NewClient(conn, m.Host)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("smtp handshake failed: %w", err)
		}
		// StartTLS issues EHLO, upgrades the connection, then EHLOs again.
		if err := client.StartTLS(m.tlsConfig()); err != nil {
			client.Close()
			return nil, fmt.Errorf("starttls failed: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSMTPPort, m.Port)
	}
}

func (m *Mailer) tlsConfig() *tls.Config {
	if m.TLSConfig != nil {
		return m.TLSConfig
	}
	return &tls.Config{ServerName: m.Host}
}

func (m *Mailer) compose(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}
