// Package format holds display formatters shared by the dashboard
// templates: call durations, provider timestamps, and INR currency.
package format

import (
	"fmt"
	"strings"
	"time"
)

// Duration renders a call duration in seconds as a compact string:
// 45 -> "45s", 120 -> "2m", 125 -> "2m 5s". Zero and negative values
// render as "0s".
func Duration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	m := seconds / 60
	s := seconds % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

// Timestamp layouts used by the telephony provider's exports.
var clockLayouts = []string{
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
}

// ClockTime converts a provider timestamp ("DD-MM-YYYY HH:MM" with
// optional seconds) to a 12-hour clock string like "4:30 PM".
// Unparsable input renders as "-" so a bad record never breaks a row.
func ClockTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock(t)
		}
	}
	return "-"
}

// Clock renders the time-of-day portion of t as a 12-hour clock
// string without a leading zero on the hour.
func Clock(t time.Time) string {
	return t.Format("3:04 PM")
}

// INR renders an amount as Indian rupees with Indian-style digit
// grouping: 1234567.5 -> "₹12,34,567.50". Negative amounts keep the
// sign ahead of the symbol.
func INR(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	whole := int64(amount)
	frac := int64((amount-float64(whole))*100 + 0.5)
	if frac == 100 {
		whole++
		frac = 0
	}

	out := "₹" + groupIndian(whole) + fmt.Sprintf(".%02d", frac)
	if neg {
		return "-" + out
	}
	return out
}

// groupIndian inserts commas per the Indian numbering system: the last
// three digits form one group, every two digits after that.
func groupIndian(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	head := s[:len(s)-3]
	tail := s[len(s)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
