package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/gaedke-construction/smartquote/pkg/logging"
)

// ErrSMTPCredentialsMissing is returned at send time when the SMTP settings are incomplete.
var ErrSMTPCredentialsMissing = errors.New("notify: SMTP credentials missing (SMTP_HOST, SMTP_USER, SMTP_PASS)")

// SMTPConfig holds configuration for authenticated SMTP delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
}

// SMTPSender sends plain-text mail through an SMTP relay, authenticating as
// Username and sending from that address.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *logging.Logger
}

// NewSMTPSender always returns a sender; incomplete credentials surface as
// ErrSMTPCredentialsMissing on Send so lead failures carry a readable reason.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) configured() bool {
	return strings.TrimSpace(s.cfg.Host) != "" &&
		strings.TrimSpace(s.cfg.Username) != "" &&
		s.cfg.Password != ""
}

func (s *SMTPSender) buildMessage(msg EmailMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.Username); err != nil {
		return nil, fmt.Errorf("notify: invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("notify: invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func (s *SMTPSender) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
	}
	// 465 is implicit TLS; everything else negotiates STARTTLS.
	if s.cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	return gomail.NewClient(s.cfg.Host, opts...)
}

// Send delivers msg over SMTP.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) (SendResult, error) {
	if s == nil || !s.configured() {
		return SendResult{}, ErrSMTPCredentialsMissing
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return SendResult{}, err
	}
	c, err := s.client()
	if err != nil {
		return SendResult{}, fmt.Errorf("notify: smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Error("smtp send failed", "error", err, "to", msg.To, "host", s.cfg.Host)
		return SendResult{}, fmt.Errorf("notify: smtp send failed: %w", err)
	}

	result := SendResult{Provider: "smtp"}
	if ids := m.GetGenHeader(gomail.HeaderMessageID); len(ids) > 0 {
		result.MessageID = ids[0]
	}
	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject, "message_id", result.MessageID)
	return result, nil
}

var _ EmailSender = (*SMTPSender)(nil)
