package forecast

import (
	"strings"
	"time"
)

var zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}

var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a transaction timestamp in the local calendar.
func ParseTimestamp(transactionID, raw string) (time.Time, error) {
	return ParseTimestampIn(transactionID, raw, time.Local)
}

// ParseTimestampIn parses raw, interpreting zone-less layouts in loc.
func ParseTimestampIn(transactionID, raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, &TimestampError{TransactionID: transactionID, Raw: raw}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &TimestampError{TransactionID: transactionID, Raw: raw}
}
