package services

import (
	"testing"
	"time"

	"github.com/umshah583/quickway_backend/models"
)

var testDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return testDate.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestComputeDutyWindows(t *testing.T) {
	tests := []struct {
		name     string
		settings *models.DutySettings
		want     []DutyWindow
	}{
		{
			name:     "nil settings means no restriction",
			settings: nil,
			want:     nil,
		},
		{
			name:     "empty settings means no restriction",
			settings: &models.DutySettings{},
			want:     nil,
		},
		{
			name:     "single start/end pair",
			settings: &models.DutySettings{Start: "08:00", End: "18:00"},
			want:     []DutyWindow{{Start: at(8, 0), End: at(18, 0)}},
		},
		{
			name: "shifts sorted ascending by start",
			settings: &models.DutySettings{Shifts: []models.DutyShift{
				{Name: "evening", Start: "16:00", End: "22:00"},
				{Name: "morning", Start: "06:00", End: "12:00"},
			}},
			want: []DutyWindow{
				{Name: "morning", Start: at(6, 0), End: at(12, 0)},
				{Name: "evening", Start: at(16, 0), End: at(22, 0)},
			},
		},
		{
			name:     "overnight shift rolls end to next day",
			settings: &models.DutySettings{Start: "22:00", End: "06:00"},
			want:     []DutyWindow{{Start: at(22, 0), End: at(6, 0).Add(24 * time.Hour)}},
		},
		{
			name:     "end equal to start rolls to next day",
			settings: &models.DutySettings{Start: "09:00", End: "09:00"},
			want:     []DutyWindow{{Start: at(9, 0), End: at(9, 0).Add(24 * time.Hour)}},
		},
		{
			name: "malformed shift is skipped",
			settings: &models.DutySettings{Shifts: []models.DutyShift{
				{Start: "not-a-time", End: "12:00"},
				{Start: "13:00", End: "17:00"},
			}},
			want: []DutyWindow{{Start: at(13, 0), End: at(17, 0)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDutyWindows(tt.settings, testDate)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d windows, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Name != tt.want[i].Name ||
					!got[i].Start.Equal(tt.want[i].Start) ||
					!got[i].End.Equal(tt.want[i].End) {
					t.Errorf("window %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestComputeDutyWindows_EndAlwaysAfterStart(t *testing.T) {
	// Every end at or before its start must roll so the window end is
	// strictly after its start.
	cases := []models.DutyShift{
		{Start: "22:00", End: "06:00"},
		{Start: "12:00", End: "12:00"},
		{Start: "23:59", End: "00:00"},
		{Start: "00:00", End: "00:00"},
	}
	for _, shift := range cases {
		windows := ComputeDutyWindows(&models.DutySettings{Shifts: []models.DutyShift{shift}}, testDate)
		if len(windows) != 1 {
			t.Fatalf("shift %+v: got %d windows", shift, len(windows))
		}
		if !windows[0].End.After(windows[0].Start) {
			t.Errorf("shift %+v: end %v not after start %v", shift, windows[0].End, windows[0].Start)
		}
	}
}

func TestIsWithinDutyWindow(t *testing.T) {
	windows := ComputeDutyWindows(&models.DutySettings{Start: "08:00", End: "18:00"}, testDate)

	tests := []struct {
		name    string
		now     time.Time
		windows []DutyWindow
		want    bool
	}{
		{"empty windows always on duty, midnight", at(0, 0), nil, true},
		{"empty windows always on duty, noon", at(12, 0), nil, true},
		{"before window start", at(7, 59), windows, false},
		{"window start inclusive", at(8, 0), windows, true},
		{"inside window", at(12, 30), windows, true},
		{"window end inclusive", at(18, 0), windows, true},
		{"after window end", at(18, 1), windows, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWithinDutyWindow(tt.now, tt.windows); got != tt.want {
				t.Errorf("IsWithinDutyWindow(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestLastWindowEnd(t *testing.T) {
	settings := &models.DutySettings{Shifts: []models.DutyShift{
		{Start: "06:00", End: "12:00"},
		{Start: "14:00", End: "20:00"},
	}}
	windows := ComputeDutyWindows(settings, testDate)

	if got := LastWindowEnd(windows); !got.Equal(at(20, 0)) {
		t.Errorf("LastWindowEnd = %v, want %v", got, at(20, 0))
	}
	if got := LastWindowEnd(nil); !got.IsZero() {
		t.Errorf("LastWindowEnd(nil) = %v, want zero", got)
	}
}

func TestNextWindowStart(t *testing.T) {
	settings := &models.DutySettings{Shifts: []models.DutyShift{
		{Start: "06:00", End: "12:00"},
		{Start: "14:00", End: "20:00"},
	}}
	windows := ComputeDutyWindows(settings, testDate)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before first window", at(5, 0), at(6, 0)},
		{"between windows", at(13, 0), at(14, 0)},
		{"after all windows", at(21, 0), time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextWindowStart(tt.now, windows)
			if !got.Equal(tt.want) {
				t.Errorf("NextWindowStart(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
