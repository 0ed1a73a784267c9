package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLocation(t *testing.T) {
	tests := []struct {
		name             string
		location         string
		expectedCountry  string
		expectedTimezone string
	}{
		{
			name:             "city and country",
			location:         "Tokyo, Japan",
			expectedCountry:  "Japan",
			expectedTimezone: "Asia/Tokyo",
		},
		{
			name:             "city only",
			location:         "Bengaluru",
			expectedCountry:  "India",
			expectedTimezone: "Asia/Kolkata",
		},
		{
			name:             "case insensitive match",
			location:         "BERLIN",
			expectedCountry:  "Germany",
			expectedTimezone: "Europe/Berlin",
		},
		{
			name:             "surrounding whitespace is trimmed",
			location:         "  London  ",
			expectedCountry:  "United Kingdom",
			expectedTimezone: "Europe/London",
		},
		{
			name:             "short us token",
			location:         "Portland, US",
			expectedCountry:  "United States",
			expectedTimezone: "America/New_York",
		},
		{
			name:             "australia wins over the embedded us token",
			location:         "Australia",
			expectedCountry:  "Australia",
			expectedTimezone: "Australia/Sydney",
		},
		{
			name:             "ukraine wins over the embedded uk token",
			location:         "Ukraine",
			expectedCountry:  "Ukraine",
			expectedTimezone: "Europe/Kyiv",
		},
		{
			name:             "unicode synonym",
			location:         "São Paulo",
			expectedCountry:  "Brazil",
			expectedTimezone: "America/Sao_Paulo",
		},
		{
			name:             "unknown location passes through as country",
			location:         "Middle Earth",
			expectedCountry:  "Middle Earth",
			expectedTimezone: "",
		},
		{
			name:             "empty location",
			location:         "",
			expectedCountry:  "",
			expectedTimezone: "",
		},
		{
			name:             "whitespace only location",
			location:         "   ",
			expectedCountry:  "",
			expectedTimezone: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			country, timezone := ResolveLocation(tt.location)
			assert.Equal(t, tt.expectedCountry, country)
			assert.Equal(t, tt.expectedTimezone, timezone)
		})
	}
}

func TestGeoTablesStayAligned(t *testing.T) {
	// Every country synonym should also resolve a timezone; a pattern present
	// in one table but not the other silently degrades snapshots.
	tzPatterns := make(map[string]bool, len(timezoneRules))
	for _, r := range timezoneRules {
		tzPatterns[r.pattern] = true
	}
	for _, r := range countryRules {
		assert.True(t, tzPatterns[r.pattern], "country pattern %q has no timezone rule", r.pattern)
	}
}
