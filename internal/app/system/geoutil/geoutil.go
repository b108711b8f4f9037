// Package geoutil extracts coordinates from Google Maps URLs.
// Customer records often carry a shared map link instead of stored
// lat/lng fields; the location map falls back to parsing the link.
package geoutil

import (
	"regexp"
	"strconv"
	"strings"
)

// Coordinate URL patterns, tried in order. The q= form is what
// expanded short links carry; @lat,lng appears in place links; the
// !3d/!4d markers live inside the data blob of full links.
var coordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]q=(-?\d+\.?\d*),(-?\d+\.?\d*)`),
	regexp.MustCompile(`@(-?\d+\.?\d*),(-?\d+\.?\d*)`),
	regexp.MustCompile(`!3d(-?\d+\.?\d*)!4d(-?\d+\.?\d*)`),
	regexp.MustCompile(`maps/place/[^/]+/(-?\d+\.?\d*),(-?\d+\.?\d*)`),
}

// IsMapsURL reports whether s looks like a Google Maps link,
// shortened or full.
func IsMapsURL(s string) bool {
	return strings.Contains(s, "goo.gl/maps") ||
		strings.Contains(s, "maps.app.goo.gl") ||
		strings.Contains(s, "google.com/maps")
}

// ExtractCoordinates pulls lat/lng out of a Google Maps URL.
// Returns ok=false when the URL carries no recognizable coordinate
// pair or the values are outside valid ranges.
func ExtractCoordinates(url string) (lat, lng float64, ok bool) {
	url = strings.TrimSpace(url)
	if url == "" {
		return 0, 0, false
	}

	for _, pat := range coordPatterns {
		m := pat.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lng, errLng := strconv.ParseFloat(m[2], 64)
		if errLat != nil || errLng != nil {
			continue
		}
		if !validLat(lat) || !validLng(lng) {
			continue
		}
		return lat, lng, true
	}
	return 0, 0, false
}

func validLat(v float64) bool { return v >= -90 && v <= 90 }
func validLng(v float64) bool { return v >= -180 && v <= 180 }
