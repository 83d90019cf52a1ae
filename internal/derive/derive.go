// Package derive computes the fields that are never stored: calendar age,
// district keys, monthly buckets and guarded rates.
package derive

import (
	"math"
	"strings"
	"time"
)

// UnknownDistrict groups addresses the district heuristic cannot parse.
const UnknownDistrict = "Unknown"

// Age returns the number of complete years between dob and asOf.
// A birthday that has not happened yet in asOf's year does not count.
func Age(dob, asOf time.Time) int {
	years := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() ||
		(asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		years--
	}
	return years
}

// AgeBand buckets an age into the ranges used by the demographics report.
func AgeBand(age int) string {
	switch {
	case age <= 18:
		return "0-18"
	case age <= 30:
		return "19-30"
	case age <= 45:
		return "31-45"
	case age <= 60:
		return "46-60"
	default:
		return "61+"
	}
}

// AgeBands lists every band in display order.
var AgeBands = []string{"0-18", "19-30", "31-45", "46-60", "61+"}

// DistrictFromAddress takes the last-but-one space-delimited token of a
// free-text address, e.g. "Ward No.3-Gaur Rautahat, Nepal" yields "Rautahat".
// Addresses with fewer than two tokens return "".
func DistrictFromAddress(address string) string {
	tokens := strings.Split(strings.TrimSpace(address), " ")
	if len(tokens) < 2 {
		return ""
	}
	return strings.TrimRight(tokens[len(tokens)-2], ",")
}

// District prefers the structured value and falls back to the address
// heuristic for rows that predate it.
func District(structured, address string) string {
	if d := strings.TrimSpace(structured); d != "" {
		return d
	}
	if d := DistrictFromAddress(address); d != "" {
		return d
	}
	return UnknownDistrict
}

// Rate returns numerator/denominator as a percentage rounded to one decimal.
// Zero in either position yields 0.
func Rate(numerator, denominator int) float64 {
	if numerator == 0 || denominator == 0 {
		return 0
	}
	return Round(float64(numerator)/float64(denominator)*100, 1)
}

// Ratio returns numerator/denominator rounded to the given precision, or 0
// when the denominator is 0.
func Ratio(numerator, denominator int, precision uint) float64 {
	if denominator == 0 {
		return 0
	}
	return Round(float64(numerator)/float64(denominator), precision)
}

// Round rounds val to precision decimal places.
func Round(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// Date truncates t to its calendar date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
