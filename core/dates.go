package core

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var acceptedDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseDate reads a caller supplied date in any accepted layout.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, badInputError("core: date is required", nil)
	}
	for _, layout := range acceptedDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, badInputError("core: date is not recognized", map[string]any{"value": value})
}

// resolveDateBound returns value as YYYY-MM-DD, or now minus daysBack when
// value is blank. Each bound resolves independently.
func resolveDateBound(value string, now time.Time, daysBack int) (string, error) {
	if strings.TrimSpace(value) == "" {
		return now.AddDate(0, 0, -daysBack).Format(DateLayout), nil
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	return parsed.Format(DateLayout), nil
}

// connectWindow resolves the start_date/end_date pair from args against the
// connect day offsets.
func connectWindow(args Args, cfg Config, now time.Time) (string, string, error) {
	start, err := resolveDateBound(args.String("start_date"), now, cfg.Connect.StartDate)
	if err != nil {
		return "", "", err
	}
	end, err := resolveDateBound(args.String("end_date"), now, cfg.Connect.EndDate)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}
