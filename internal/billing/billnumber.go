package billing

import (
	"fmt"
	"time"
)

// FormatBillNumber renders the human-readable bill identifier:
// prefix, issue date, then the day's sequence number. The sequence comes
// from an atomic keyed counter, so concurrent creators never collide.
func FormatBillNumber(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, date.Format("20060102"), seq)
}

// FormatConnectionNumber renders a connection identifier from the same
// counter mechanism, under the CON prefix.
func FormatConnectionNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("CON-%s-%06d", date.Format("20060102"), seq)
}
