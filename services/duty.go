// services/duty.go
package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/umshah583/quickway_backend/models"
)

// DutyWindow is an absolute working interval derived from a driver's duty
// settings for a specific calendar date.
type DutyWindow struct {
	Name  string    `json:"name,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// parseClock parses "HH:MM" into hour and minute.
func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

func windowFor(name, start, end string, date time.Time) (DutyWindow, error) {
	sh, sm, err := parseClock(start)
	if err != nil {
		return DutyWindow{}, err
	}
	eh, em, err := parseClock(end)
	if err != nil {
		return DutyWindow{}, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	w := DutyWindow{
		Name:  name,
		Start: day.Add(time.Duration(sh)*time.Hour + time.Duration(sm)*time.Minute),
		End:   day.Add(time.Duration(eh)*time.Hour + time.Duration(em)*time.Minute),
	}
	// An end at or before the start is an overnight shift rolling into the
	// next calendar day.
	if !w.End.After(w.Start) {
		w.End = w.End.Add(24 * time.Hour)
	}
	return w, nil
}

// ComputeDutyWindows derives the absolute working windows for the given date
// from a driver's duty settings. An empty result means "no restriction": the
// driver is always on duty. Malformed shift entries are skipped.
func ComputeDutyWindows(settings *models.DutySettings, date time.Time) []DutyWindow {
	if settings == nil {
		return nil
	}

	var windows []DutyWindow
	if len(settings.Shifts) > 0 {
		for _, shift := range settings.Shifts {
			w, err := windowFor(shift.Name, shift.Start, shift.End, date)
			if err != nil {
				continue
			}
			windows = append(windows, w)
		}
	} else if settings.Start != "" && settings.End != "" {
		w, err := windowFor("", settings.Start, settings.End, date)
		if err == nil {
			windows = append(windows, w)
		}
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows
}

// IsWithinDutyWindow reports whether now falls within any window. Both
// endpoints are inclusive. An empty window list always passes.
func IsWithinDutyWindow(now time.Time, windows []DutyWindow) bool {
	if len(windows) == 0 {
		return true
	}
	for _, w := range windows {
		if !now.Before(w.Start) && !now.After(w.End) {
			return true
		}
	}
	return false
}

// LastWindowEnd returns the latest end time across all windows, used to decide
// when an open day is stale and should auto-close. Zero time when empty.
func LastWindowEnd(windows []DutyWindow) time.Time {
	var last time.Time
	for _, w := range windows {
		if w.End.After(last) {
			last = w.End
		}
	}
	return last
}

// NextWindowStart returns the start of the earliest window that has not ended
// at the given time, for the WAIT_FOR_DUTY_WINDOW payload. Zero time when no
// upcoming window exists.
func NextWindowStart(now time.Time, windows []DutyWindow) time.Time {
	var next time.Time
	for _, w := range windows {
		if w.End.Before(now) {
			continue
		}
		if next.IsZero() || w.Start.Before(next) {
			next = w.Start
		}
	}
	return next
}
