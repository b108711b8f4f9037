package geoutil_test

import (
	"testing"

	"github.com/dalemusser/groomhub/internal/app/system/geoutil"
)

func TestExtractCoordinates(t *testing.T) {
	tests := []struct {
		name string
		url  string
		lat  float64
		lng  float64
		ok   bool
	}{
		{
			name: "q parameter",
			url:  "https://www.google.com/maps?q=12.9716,77.5946",
			lat:  12.9716, lng: 77.5946, ok: true,
		},
		{
			name: "at format",
			url:  "https://www.google.com/maps/@12.9716,77.5946,15z",
			lat:  12.9716, lng: 77.5946, ok: true,
		},
		{
			name: "place with at",
			url:  "https://www.google.com/maps/place/Bengaluru/@12.9716,77.5946,12z",
			lat:  12.9716, lng: 77.5946, ok: true,
		},
		{
			name: "3d4d data markers",
			url:  "https://www.google.com/maps/place/X/data=!8m2!3d12.9716!4d77.5946",
			lat:  12.9716, lng: 77.5946, ok: true,
		},
		{
			name: "negative coordinates",
			url:  "https://www.google.com/maps?q=-33.8688,151.2093",
			lat:  -33.8688, lng: 151.2093, ok: true,
		},
		{
			name: "no coordinates",
			url:  "https://www.google.com/maps/place/Somewhere",
			ok:   false,
		},
		{
			name: "empty",
			url:  "",
			ok:   false,
		},
		{
			name: "out of range latitude",
			url:  "https://www.google.com/maps?q=95.0,77.5946",
			ok:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lat, lng, ok := geoutil.ExtractCoordinates(tc.url)
			if ok != tc.ok {
				t.Fatalf("ok: got %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if lat != tc.lat || lng != tc.lng {
				t.Errorf("got (%v, %v), want (%v, %v)", lat, lng, tc.lat, tc.lng)
			}
		})
	}
}

func TestIsMapsURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://maps.app.goo.gl/abc123", true},
		{"https://goo.gl/maps/abc123", true},
		{"https://www.google.com/maps/place/X", true},
		{"https://example.com/maps", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := geoutil.IsMapsURL(tc.url); got != tc.want {
			t.Errorf("IsMapsURL(%q): got %v, want %v", tc.url, got, tc.want)
		}
	}
}
