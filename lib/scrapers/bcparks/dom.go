package bcparks

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// status indicator classes carried by .map-icon elements. icons whose
// class list matches neither set are dropped, not defaulted: defaulting
// to unavailable could hide a real opening and defaulting to available
// would page people for nothing.
var unavailableIconClasses = map[string]bool{
	"icon-unavailable": true,
	"icon-reserved":    true,
	"icon-booked":      true,
	"icon-closed":      true,
}

func iconAvailability(classAttr string) (available bool, known bool) {
	for _, class := range strings.Fields(classAttr) {
		if class == "icon-available" {
			return true, true
		}
		if unavailableIconClasses[class] {
			return false, true
		}
	}
	return false, false
}

// ParseMap extracts the label -> available mapping from a rendered
// booking page. A page without a map container is an error, a map with
// zero icons is a valid empty result.
func ParseMap(html string) (map[string]bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	if doc.Find(".map-container").Length() == 0 {
		return nil, fmt.Errorf("no map container in rendered page")
	}

	sites := map[string]bool{}
	doc.Find(".map-icon").Each(func(i int, icon *goquery.Selection) {
		available, known := iconAvailability(icon.AttrOr("class", ""))
		if !known {
			slog.Debug("dropping map icon with unrecognized status classes",
				"index", i,
				"class", icon.AttrOr("class", ""),
			)
			return
		}

		label := icon.
			NextAllFiltered(".map-site-label").First().
			Find(".resource-label").First().
			Text()
		label = strings.TrimSpace(label)
		if label == "" {
			slog.Debug("dropping map icon without a site label", "index", i)
			return
		}

		sites[label] = available
	})

	return sites, nil
}
