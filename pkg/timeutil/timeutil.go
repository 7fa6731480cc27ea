// Package timeutil provides local-zone helpers for schedule records.
// Trade points work in one business timezone; planned dates and HH:MM slots
// are always expressed in it. Defaults to Asia/Almaty (UTC+5, no DST).
package timeutil

import (
	"fmt"
	"sync"
	"time"
)

// AlmatyTZ is the Almaty timezone (UTC+5, no DST).
// Kazakhstan abolished DST in 2005, so this is constant year-round.
var AlmatyTZ = time.FixedZone("Asia/Almaty", 5*60*60)

var (
	mu  sync.RWMutex
	loc = AlmatyTZ
)

// SetLocation switches the business timezone by IANA name.
func SetLocation(name string) error {
	l, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("timeutil: unknown timezone %q: %w", name, err)
	}
	mu.Lock()
	loc = l
	mu.Unlock()
	return nil
}

// Location returns the business timezone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return loc
}

// Local converts a time to the business timezone.
func Local(t time.Time) time.Time {
	return t.In(Location())
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	l := Local(t)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, l.Location())
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatClock is the slot time format (HH:MM).
	FormatClock = "15:04"
)

// FormatDateStr formats a time as YYYY-MM-DD in the business timezone.
func FormatDateStr(t time.Time) string {
	return Local(t).Format(FormatDate)
}

// FormatClockStr formats a time as HH:MM in the business timezone.
func FormatClockStr(t time.Time) string {
	return Local(t).Format(FormatClock)
}

// Slot is a planned [from, to) clock interval on one local date.
type Slot struct {
	Date time.Time // local midnight
	From string    // HH:MM
	To   string    // HH:MM
}

// SlotAt builds the slot starting at t and lasting d. The end is clamped to
// 23:59 of the same local day.
func SlotAt(t time.Time, d time.Duration) Slot {
	day := StartOfDay(t)
	end := Local(t).Add(d)
	lastMinute := day.Add(24*time.Hour - time.Minute)
	if end.After(lastMinute) {
		end = lastMinute
	}
	return Slot{Date: day, From: FormatClockStr(t), To: FormatClockStr(end)}
}
