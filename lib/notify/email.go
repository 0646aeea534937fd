package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

type EmailConfig struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

func (c EmailConfig) Enabled() bool {
	return len(c.To) > 0
}

func (c EmailConfig) Validate() error {
	if c.Host == "" || c.Port == 0 || c.From == "" {
		return fmt.Errorf("email notifications need host, port and from")
	}
	return nil
}

// Email mails newly available sites over plain SMTP.
type Email struct {
	cfg EmailConfig
}

func NewEmail(cfg EmailConfig) *Email {
	return &Email{cfg: cfg}
}

func (e *Email) Name() string {
	return "email"
}

func (e *Email) Send(ctx context.Context, event Event) error {
	msg := email.NewEmail()
	msg.From = e.cfg.From
	msg.To = e.cfg.To
	msg.Subject = "Campsite availability"
	msg.Text = []byte(fmt.Sprintf("%s\n%s", alertBody(event), event.TargetURL))

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}

	err := msg.Send(fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port), auth)
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}
