package analysis

import "strings"

// geoRule is one (pattern, value) pair. Rules are evaluated in slice order
// with first match winning, so precedence between overlapping patterns is
// deterministic; that is why these are ordered lists and not maps.
type geoRule struct {
	pattern string
	value   string
}

// countryRules maps location substrings to canonical country names. Short,
// collision-prone tokens ("us", "uk") sit at the end so that e.g.
// "Australia" is matched by its own rule before the "us" fallback sees it.
var countryRules = []geoRule{
	{"united states", "United States"},
	{"usa", "United States"},
	{"america", "United States"},
	{"united kingdom", "United Kingdom"},
	{"england", "United Kingdom"},
	{"london", "United Kingdom"},
	{"germany", "Germany"},
	{"berlin", "Germany"},
	{"france", "France"},
	{"paris", "France"},
	{"india", "India"},
	{"bangalore", "India"},
	{"bengaluru", "India"},
	{"mumbai", "India"},
	{"delhi", "India"},
	{"japan", "Japan"},
	{"tokyo", "Japan"},
	{"china", "China"},
	{"beijing", "China"},
	{"shanghai", "China"},
	{"canada", "Canada"},
	{"toronto", "Canada"},
	{"vancouver", "Canada"},
	{"australia", "Australia"},
	{"sydney", "Australia"},
	{"melbourne", "Australia"},
	{"brazil", "Brazil"},
	{"sao paulo", "Brazil"},
	{"são paulo", "Brazil"},
	{"netherlands", "Netherlands"},
	{"amsterdam", "Netherlands"},
	{"spain", "Spain"},
	{"madrid", "Spain"},
	{"barcelona", "Spain"},
	{"italy", "Italy"},
	{"rome", "Italy"},
	{"milan", "Italy"},
	{"sweden", "Sweden"},
	{"stockholm", "Sweden"},
	{"poland", "Poland"},
	{"warsaw", "Poland"},
	{"russia", "Russia"},
	{"moscow", "Russia"},
	{"south korea", "South Korea"},
	{"seoul", "South Korea"},
	{"korea", "South Korea"},
	{"singapore", "Singapore"},
	{"israel", "Israel"},
	{"tel aviv", "Israel"},
	{"nigeria", "Nigeria"},
	{"lagos", "Nigeria"},
	{"egypt", "Egypt"},
	{"cairo", "Egypt"},
	{"mexico", "Mexico"},
	{"argentina", "Argentina"},
	{"buenos aires", "Argentina"},
	{"switzerland", "Switzerland"},
	{"zurich", "Switzerland"},
	{"ireland", "Ireland"},
	{"dublin", "Ireland"},
	{"ukraine", "Ukraine"},
	{"kyiv", "Ukraine"},
	{"us", "United States"},
	{"uk", "United Kingdom"},
}

// timezoneRules is an independent table mapping the same synonyms to IANA
// timezone identifiers.
var timezoneRules = []geoRule{
	{"united states", "America/New_York"},
	{"usa", "America/New_York"},
	{"america", "America/New_York"},
	{"united kingdom", "Europe/London"},
	{"england", "Europe/London"},
	{"london", "Europe/London"},
	{"germany", "Europe/Berlin"},
	{"berlin", "Europe/Berlin"},
	{"france", "Europe/Paris"},
	{"paris", "Europe/Paris"},
	{"india", "Asia/Kolkata"},
	{"bangalore", "Asia/Kolkata"},
	{"bengaluru", "Asia/Kolkata"},
	{"mumbai", "Asia/Kolkata"},
	{"delhi", "Asia/Kolkata"},
	{"japan", "Asia/Tokyo"},
	{"tokyo", "Asia/Tokyo"},
	{"china", "Asia/Shanghai"},
	{"beijing", "Asia/Shanghai"},
	{"shanghai", "Asia/Shanghai"},
	{"canada", "America/Toronto"},
	{"toronto", "America/Toronto"},
	{"vancouver", "America/Vancouver"},
	{"australia", "Australia/Sydney"},
	{"sydney", "Australia/Sydney"},
	{"melbourne", "Australia/Melbourne"},
	{"brazil", "America/Sao_Paulo"},
	{"sao paulo", "America/Sao_Paulo"},
	{"são paulo", "America/Sao_Paulo"},
	{"netherlands", "Europe/Amsterdam"},
	{"amsterdam", "Europe/Amsterdam"},
	{"spain", "Europe/Madrid"},
	{"madrid", "Europe/Madrid"},
	{"barcelona", "Europe/Madrid"},
	{"italy", "Europe/Rome"},
	{"rome", "Europe/Rome"},
	{"milan", "Europe/Rome"},
	{"sweden", "Europe/Stockholm"},
	{"stockholm", "Europe/Stockholm"},
	{"poland", "Europe/Warsaw"},
	{"warsaw", "Europe/Warsaw"},
	{"russia", "Europe/Moscow"},
	{"moscow", "Europe/Moscow"},
	{"south korea", "Asia/Seoul"},
	{"seoul", "Asia/Seoul"},
	{"korea", "Asia/Seoul"},
	{"singapore", "Asia/Singapore"},
	{"israel", "Asia/Jerusalem"},
	{"tel aviv", "Asia/Jerusalem"},
	{"nigeria", "Africa/Lagos"},
	{"lagos", "Africa/Lagos"},
	{"egypt", "Africa/Cairo"},
	{"cairo", "Africa/Cairo"},
	{"mexico", "America/Mexico_City"},
	{"argentina", "America/Argentina/Buenos_Aires"},
	{"buenos aires", "America/Argentina/Buenos_Aires"},
	{"switzerland", "Europe/Zurich"},
	{"zurich", "Europe/Zurich"},
	{"ireland", "Europe/Dublin"},
	{"dublin", "Europe/Dublin"},
	{"ukraine", "Europe/Kyiv"},
	{"kyiv", "Europe/Kyiv"},
	{"us", "America/New_York"},
	{"uk", "Europe/London"},
}

// ResolveLocation maps a free-text profile location to a canonical country
// and an IANA timezone via case-insensitive substring matching. When no
// country rule matches, the raw text is returned unchanged so the UI still
// has something to display; when no timezone rule matches, timezone is
// empty. Best effort, no side effects, never fails.
func ResolveLocation(location string) (country, timezone string) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", ""
	}

	lower := strings.ToLower(location)

	country = location
	for _, r := range countryRules {
		if strings.Contains(lower, r.pattern) {
			country = r.value
			break
		}
	}

	for _, r := range timezoneRules {
		if strings.Contains(lower, r.pattern) {
			timezone = r.value
			break
		}
	}

	return country, timezone
}
