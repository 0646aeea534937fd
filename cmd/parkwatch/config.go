package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"parkwatch/lib/configutil"
	"parkwatch/lib/notify"

	"github.com/spf13/cobra"
)

const (
	modeAPI     = "api"
	modeBrowser = "browser"
)

// Config is the fully merged monitor configuration: an optional
// parkwatch.json5 file layered under the command-line flags. It is
// built once at startup and never mutated afterwards.
type Config struct {
	URL      string             `json:"url"`
	Interval int                `json:"interval"`
	Filter   []string           `json:"filter"`
	Mode     string             `json:"mode"`
	SMS      bool               `json:"sms"`
	Twilio   notify.SMSConfig   `json:"twilio"`
	Email    notify.EmailConfig `json:"email"`
}

func splitFilter(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func loadConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := configutil.Load[Config]("parkwatch.json5")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	flags := cmd.Flags()
	if value, _ := flags.GetString("url"); flags.Changed("url") || cfg.URL == "" {
		cfg.URL = value
	}
	if value, _ := flags.GetInt("interval"); flags.Changed("interval") || cfg.Interval == 0 {
		cfg.Interval = value
	}
	if value, _ := flags.GetString("filter"); flags.Changed("filter") {
		cfg.Filter = splitFilter(value)
	}
	if value, _ := flags.GetString("mode"); flags.Changed("mode") || cfg.Mode == "" {
		cfg.Mode = value
	}
	if value, _ := flags.GetBool("sms"); flags.Changed("sms") {
		cfg.SMS = value
	}
	if value, _ := flags.GetString("twilio_sid"); flags.Changed("twilio_sid") {
		cfg.Twilio.AccountSID = value
	}
	if value, _ := flags.GetString("twilio_auth_token"); flags.Changed("twilio_auth_token") {
		cfg.Twilio.AuthToken = value
	}
	if value, _ := flags.GetString("twilio_number"); flags.Changed("twilio_number") {
		cfg.Twilio.From = value
	}
	if value, _ := flags.GetString("my_phone_number"); flags.Changed("my_phone_number") {
		cfg.Twilio.To = value
	}

	return cfg, validateConfig(cfg)
}

// misconfiguration must surface here, before the poll loop ever starts
func validateConfig(cfg Config) error {
	if cfg.URL == "" {
		return fmt.Errorf("--url is required")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("--interval must be a positive number of seconds")
	}
	if cfg.Mode != modeAPI && cfg.Mode != modeBrowser {
		return fmt.Errorf("--mode must be '%s' or '%s'", modeAPI, modeBrowser)
	}
	if cfg.SMS {
		err := cfg.Twilio.Validate()
		if err != nil {
			return err
		}
	}
	if cfg.Email.Enabled() {
		err := cfg.Email.Validate()
		if err != nil {
			return err
		}
	}
	return nil
}
