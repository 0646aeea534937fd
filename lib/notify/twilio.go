package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"parkwatch/lib/shorturl"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type SMSConfig struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	From       string `json:"from"`
	To         string `json:"to"`
}

func (c SMSConfig) Validate() error {
	var missing []string
	for name, value := range map[string]string{
		"twilio_sid":        c.AccountSID,
		"twilio_auth_token": c.AuthToken,
		"twilio_number":     c.From,
		"my_phone_number":   c.To,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("sms is enabled but %v are not set", missing)
	}
	return nil
}

// SMS texts newly available sites through Twilio, with a shortened
// booking link so the message stays within one segment.
type SMS struct {
	client    *twilio.RestClient
	cfg       SMSConfig
	shortener *shorturl.Client
	// receives the "SMS sent: <sid>" confirmation line, stdout by default
	Out io.Writer
}

func NewSMS(cfg SMSConfig, shortener *shorturl.Client) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMS{
		client:    client,
		cfg:       cfg,
		shortener: shortener,
		Out:       os.Stdout,
	}
}

func (s *SMS) Name() string {
	return "sms"
}

func (s *SMS) Send(ctx context.Context, event Event) error {
	link := event.TargetURL
	if s.shortener != nil {
		short, err := s.shortener.Shorten(ctx, link)
		if err != nil {
			slog.WarnContext(ctx, "could not shorten booking link, sending it raw", "err", err)
		} else {
			link = short
		}
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(s.cfg.To)
	params.SetFrom(s.cfg.From)
	params.SetBody(fmt.Sprintf("%s\n%s", alertBody(event), link))

	message, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}

	sid := ""
	if message.Sid != nil {
		sid = *message.Sid
	}
	_, err = fmt.Fprintf(s.Out, "SMS sent: %s\n", sid)
	return err
}
