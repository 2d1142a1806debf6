package domain

import "sort"

// supportedIATA lists the location codes the trips provider serves.
var supportedIATA = map[string]struct{}{
	"ATL": {}, "PEK": {}, "LAX": {}, "DXB": {}, "HND": {}, "ORD": {}, "LHR": {},
	"PVG": {}, "CDG": {}, "DFW": {}, "AMS": {}, "FRA": {}, "IST": {}, "CAN": {},
	"JFK": {}, "SIN": {}, "DEN": {}, "ICN": {}, "BKK": {}, "SFO": {}, "LAS": {},
	"CLT": {}, "MIA": {}, "KUL": {}, "SEA": {}, "MUC": {}, "EWR": {}, "MAD": {},
	"HKG": {}, "MCO": {}, "PHX": {}, "IAH": {}, "SYD": {}, "MEL": {}, "GRU": {},
	"YYZ": {}, "LGW": {}, "BCN": {}, "MAN": {}, "BOM": {}, "DEL": {}, "ZRH": {},
	"SVO": {}, "DME": {}, "JNB": {}, "ARN": {}, "OSL": {}, "CPH": {}, "HEL": {},
	"VIE": {},
}

// IsSupportedIATA reports whether code is in the allow-list. Codes are
// case-sensitive; callers normalise with NewSearchCriteria.
func IsSupportedIATA(code string) bool {
	_, ok := supportedIATA[code]
	return ok
}

// SupportedIATACodes returns the allow-list sorted alphabetically.
func SupportedIATACodes() []string {
	codes := make([]string, 0, len(supportedIATA))
	for c := range supportedIATA {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
