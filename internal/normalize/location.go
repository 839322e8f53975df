package normalize

import (
	"regexp"
	"strings"

	"github.com/practicejobs/ingest/internal/domain/model"
)

// stateCodes maps lowercase US state names to their postal codes.
var stateCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

var validStateCodes = buildStateCodeSet()

func buildStateCodeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(stateCodes))
	for _, code := range stateCodes {
		set[code] = struct{}{}
	}
	return set
}

var remoteRe = regexp.MustCompile(`(?i)\b(remote|work from home|telehealth|telecommute)\b`)

// ParseLocation extracts a normalized city/state pair from a raw location
// string. "Austin, TX" and "Austin, Texas" both yield {Austin TX}; strings
// mentioning remote work set Remote regardless of any city present.
func ParseLocation(raw string) model.Location {
	loc := model.Location{Remote: remoteRe.MatchString(raw)}

	cleaned := remoteRe.ReplaceAllString(raw, "")
	cleaned = strings.Trim(cleaned, " ,-–—()/")
	if cleaned == "" {
		return loc
	}

	parts := strings.Split(cleaned, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	loc.City = parts[0]
	for _, part := range parts[1:] {
		if code, ok := stateFrom(part); ok {
			loc.State = code
			break
		}
	}

	// A single token that is itself a state ("Texas") is a state, not a city.
	if loc.State == "" {
		if code, ok := stateFrom(loc.City); ok {
			loc.City = ""
			loc.State = code
		}
	}

	return loc
}

// stateFrom resolves a fragment to a state code, accepting either a postal
// code ("TX", possibly followed by a zip) or a full state name.
func stateFrom(fragment string) (string, bool) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return "", false
	}

	// "TX 78701" → "TX"
	token := strings.Fields(fragment)[0]
	upper := strings.ToUpper(token)
	if _, ok := validStateCodes[upper]; ok && len(token) == 2 {
		return upper, true
	}

	if code, ok := stateCodes[strings.ToLower(fragment)]; ok {
		return code, true
	}
	return "", false
}
