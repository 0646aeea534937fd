package main

import (
	"fmt"
	"os"
	"time"

	"parkwatch/lib/notify"
	"parkwatch/lib/scrapers/bcparks"
	"parkwatch/lib/serviceutil"
	"parkwatch/lib/shorturl"
	"parkwatch/services/watcher"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "parkwatch --url <create-booking results url>",
	Short: "parkwatch polls a camping.bcparks.ca search for bookable campsites and notifies you when one opens up.",
	Run:   run,
}

// the short spellings predate this tool, people have them in cron
// entries and shell history
var flagAliases = map[string]string{
	"u":    "url",
	"i":    "interval",
	"f":    "filter",
	"s":    "sms",
	"tsid": "twilio_sid",
	"tat":  "twilio_auth_token",
	"tn":   "twilio_number",
	"mpn":  "my_phone_number",
}

func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}

func init() {
	flags := rootCmd.Flags()
	flags.SetNormalizeFunc(normalizeFlags)

	flags.String("url", "", "Search-results URL from https://camping.bcparks.ca/create-booking to monitor.")
	flags.Int("interval", 60, "Interval between checks in seconds.")
	flags.String("filter", "", "Comma-separated site labels to watch, e.g. '10,92,S18,S32B'. Watches every site when unset.")
	flags.Bool("sms", false, "Send an SMS when sites become available (requires the twilio flags).")
	flags.String("twilio_sid", "", "Twilio account sid.")
	flags.String("twilio_auth_token", "", "Twilio auth token.")
	flags.String("twilio_number", "", "Twilio phone number to send from.")
	flags.String("my_phone_number", "", "Phone number to send availability texts to.")
	flags.String("mode", modeAPI, "How to query the provider: 'api' or 'browser' (headless Chrome).")
	flags.Bool("once", false, "Query once, print an availability table and exit.")
	flags.BoolP("verbose", "v", false, "Enable verbose logging/instrumentation.")
}

func run(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	once, _ := cmd.Flags().GetBool("once")

	ctx := serviceutil.SignalContext()
	initTelemetry(ctx, verbose)

	cfg, err := loadConfig(cmd)
	if err != nil {
		serviceutil.Fatal("invalid configuration", err)
	}

	var provider watcher.Provider
	switch cfg.Mode {
	case modeAPI:
		params, err := bcparks.ParseBookingURL(cfg.URL)
		if err != nil {
			serviceutil.Fatal("invalid --url", err)
		}
		client, err := bcparks.NewClient(params)
		if err != nil {
			serviceutil.Fatal("init api client", err)
		}
		provider = watcher.NewAPIProvider(client)
	case modeBrowser:
		browser := bcparks.NewBrowser(ctx)
		defer browser.Close()
		provider = watcher.NewBrowserProvider(browser, cfg.URL)
	}

	if once {
		printOnce(ctx, provider, cfg)
		return
	}

	var alerts []notify.Notifier
	if cfg.SMS {
		alerts = append(alerts, notify.NewSMS(cfg.Twilio, shorturl.NewClient()))
	}
	if cfg.Email.Enabled() {
		alerts = append(alerts, notify.NewEmail(cfg.Email))
	}

	w := watcher.New(
		watcher.Config{
			TargetURL:  cfg.URL,
			Interval:   time.Duration(cfg.Interval) * time.Second,
			SiteFilter: cfg.Filter,
		},
		provider,
		notify.Console{Out: os.Stdout},
		alerts...,
	)
	w.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
