// Package bcparks talks to the camping.bcparks.ca reservation map, either
// through the JSON API the booking page itself calls or through a rendered
// copy of the page.
package bcparks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"parkwatch/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// BookingParams holds everything the availability API needs, lifted from
// the query string of a create-booking/results URL.
type BookingParams struct {
	Origin             string
	ResourceLocationID string
	MapID              string
	StartDate          string
	EndDate            string
}

func ParseBookingURL(link string) (BookingParams, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return BookingParams{}, fmt.Errorf("invalid booking url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return BookingParams{}, fmt.Errorf("invalid booking url: missing scheme or host")
	}

	query := parsed.Query()
	params := BookingParams{
		Origin:             fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host),
		ResourceLocationID: query.Get("resourceLocationId"),
		MapID:              query.Get("mapId"),
		StartDate:          query.Get("startDate"),
		EndDate:            query.Get("endDate"),
	}

	var missing []string
	for name, value := range map[string]string{
		"resourceLocationId": params.ResourceLocationID,
		"mapId":              params.MapID,
		"startDate":          params.StartDate,
		"endDate":            params.EndDate,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return BookingParams{}, fmt.Errorf(
			"booking url is missing query params: %s",
			strings.Join(missing, ", "),
		)
	}

	return params, nil
}

// Client issues the same requests the booking page makes in the browser.
type Client struct {
	http   *resty.Client
	params BookingParams
}

func NewClient(params BookingParams) (*Client, error) {
	client := resty.New()
	client.SetBaseURL(params.Origin)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/bcparks")

	return &Client{
		http:   client,
		params: params,
	}, nil
}

// AvailabilityPayload carries the two raw API responses describing one
// poll: the site names and the site statuses.
type AvailabilityPayload struct {
	Resources []byte
	Map       []byte
}

// Fetch retrieves both payloads. It only fails on transport-level
// problems, interpreting the payloads is Normalize's job.
func (c *Client) Fetch(ctx context.Context) (AvailabilityPayload, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"resourceLocationId": c.params.ResourceLocationID,
			"mapId":              c.params.MapID,
		}).
		Get("/api/resourcelocation/resources")
	if err != nil {
		return AvailabilityPayload{}, fmt.Errorf("fetch resource names: %w", err)
	}
	if res.StatusCode() != 200 {
		return AvailabilityPayload{}, fmt.Errorf("fetch resource names: status %d", res.StatusCode())
	}
	resources := res.Body()

	res, err = c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"mapId":     c.params.MapID,
			"startDate": c.params.StartDate,
			"endDate":   c.params.EndDate,
		}).
		Get("/api/availability/map")
	if err != nil {
		return AvailabilityPayload{}, fmt.Errorf("fetch availability map: %w", err)
	}
	if res.StatusCode() != 200 {
		return AvailabilityPayload{}, fmt.Errorf("fetch availability map: status %d", res.StatusCode())
	}

	return AvailabilityPayload{
		Resources: resources,
		Map:       res.Body(),
	}, nil
}

type resourceRecord struct {
	LocalizedValues []struct {
		Name string `json:"name"`
	} `json:"localizedValues"`
}

type availabilityRecord struct {
	Availability int `json:"availability"`
}

// availability codes observed in the map API. 0 is bookable, the rest
// are flavors of not-bookable. anything outside this table is dropped
// rather than guessed at.
func statusToAvailable(code int) (available bool, known bool) {
	switch code {
	case 0:
		return true, true
	case 1, 2, 3, 4, 5:
		return false, true
	}
	return false, false
}

// Normalize merges the two payloads into a label -> available mapping.
// Records with an unrecognized status code or without a display name are
// dropped. An empty resourceAvailabilities object is a valid empty
// result, a payload without one at all is an error.
func Normalize(raw AvailabilityPayload) (map[string]bool, error) {
	var top map[string]json.RawMessage
	err := json.Unmarshal(raw.Map, &top)
	if err != nil {
		return nil, fmt.Errorf("availability map: %w", err)
	}
	rawAvailabilities, ok := top["resourceAvailabilities"]
	if !ok {
		return nil, fmt.Errorf("availability map: no resourceAvailabilities field")
	}
	var availabilities map[string][]availabilityRecord
	err = json.Unmarshal(rawAvailabilities, &availabilities)
	if err != nil {
		return nil, fmt.Errorf("availability map: %w", err)
	}

	var resources map[string]resourceRecord
	err = json.Unmarshal(raw.Resources, &resources)
	if err != nil {
		return nil, fmt.Errorf("resource names: %w", err)
	}

	sites := make(map[string]bool, len(availabilities))
	for id, records := range availabilities {
		if len(records) == 0 {
			continue
		}
		available, known := statusToAvailable(records[0].Availability)
		if !known {
			slog.Debug(
				"dropping resource with unrecognized availability code",
				"resource", id,
				"code", records[0].Availability,
			)
			continue
		}

		resource, ok := resources[id]
		if !ok || len(resource.LocalizedValues) == 0 {
			slog.Debug("dropping resource without a display name", "resource", id)
			continue
		}
		label := strings.TrimSpace(resource.LocalizedValues[0].Name)
		if label == "" {
			continue
		}

		sites[label] = available
	}

	return sites, nil
}
