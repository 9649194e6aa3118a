// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/olegiv/incident-intake/internal/store"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// MailConfig holds SMTP transport settings.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// Secure selects implicit TLS (SMTPS). Otherwise STARTTLS is used when offered.
	Secure  bool
	From    string
	To      []string
	Timeout time.Duration
}

// Enabled reports whether a mail transport is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != ""
}

// Mailer sends report notifications over SMTP.
type Mailer struct {
	cfg    MailConfig
	logger *slog.Logger
}

// New returns a Mailer when cfg configures a transport, and Noop otherwise.
func New(cfg MailConfig, logger *slog.Logger) (Notifier, error) {
	if !cfg.Enabled() {
		return Noop{}, nil
	}
	return NewMailer(cfg, logger)
}

// NewMailer validates cfg and creates a Mailer.
func NewMailer(cfg MailConfig, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail from address is required")
	}
	if len(cfg.To) == 0 {
		return nil, errors.New("at least one mail recipient is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
		if cfg.Secure {
			cfg.Port = 465
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{cfg: cfg, logger: logger}, nil
}

// Message builds the notification mail for r.
func (m *Mailer) Message(r store.Report) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return nil, fmt.Errorf("setting recipients: %w", err)
	}
	if r.ContactEmail != "" {
		// Free-form input; ignore addresses the mail library rejects.
		_ = msg.ReplyTo(r.ContactEmail)
	}
	msg.Subject(Subject(r))
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, Body(r))
	return msg, nil
}

// Notify makes one delivery attempt, bounded by the configured timeout.
func (m *Mailer) Notify(ctx context.Context, r store.Report) error {
	msg, err := m.Message(r)
	if err != nil {
		return err
	}

	client, err := m.client()
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending notification mail: %w", err)
	}

	m.logger.Info("notification mail sent",
		"report_id", r.ID,
		"recipients", len(m.cfg.To),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (m *Mailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}
