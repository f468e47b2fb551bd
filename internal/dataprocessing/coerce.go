package dataprocessing

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	errBlank       = errors.New("value is blank")
	errNotFinite   = errors.New("value is not a finite number")
	errNoDateMatch = errors.New("no date layout matched")
	errGrouping    = errors.New("comma is not a thousands separator")
)

// thousandsGrouping matches amounts whose commas separate groups of three digits
var thousandsGrouping = regexp.MustCompile(`^-?\$?\d{1,3}(,\d{3})+(\.\d+)?$`)

// DefaultDateLayouts are tried in order when parsing order dates
var DefaultDateLayouts = []string{
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// parseAmount parses a sales amount. Commas are accepted only as thousands
// separators; a decimal comma such as "1,50" fails.
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errBlank
	}
	if strings.Contains(s, ",") {
		if !thousandsGrouping.MatchString(s) {
			return 0, errGrouping
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	if strings.HasPrefix(s, "-$") {
		s = "-" + s[2:]
	}
	s = strings.TrimPrefix(s, "$")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// parseDate parses an order date against layouts in order. Only the calendar
// date is kept; the time of day is discarded.
func parseDate(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errBlank
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errNoDateMatch
}

// round2 rounds half away from zero to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
