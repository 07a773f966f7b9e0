package calendar

import (
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

func TestToEventSummary(t *testing.T) {
	event := &calendar.Event{
		Id:          "evt1",
		Summary:     "Standup",
		Description: "Daily sync",
		Location:    "Room 4",
		Status:      "confirmed",
		Start:       &calendar.EventDateTime{DateTime: "2026-01-05T09:00:00Z"},
		End:         &calendar.EventDateTime{DateTime: "2026-01-05T09:15:00Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "a@example.com"},
			{Email: "b@example.com"},
		},
	}

	summary := toEventSummary(event)
	if summary.ID != "evt1" {
		t.Errorf("ID = %q, want evt1", summary.ID)
	}
	if summary.Summary != "Standup" {
		t.Errorf("Summary = %q", summary.Summary)
	}
	if !summary.Start.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", summary.Start)
	}
	if len(summary.Attendees) != 2 || summary.Attendees[0] != "a@example.com" {
		t.Errorf("Attendees = %v", summary.Attendees)
	}
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name string
		edt  *calendar.EventDateTime
		want time.Time
	}{
		{
			name: "timed event",
			edt:  &calendar.EventDateTime{DateTime: "2026-01-05T09:00:00Z"},
			want: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "all-day event",
			edt:  &calendar.EventDateTime{Date: "2026-01-05"},
			want: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "nil",
			edt:  nil,
			want: time.Time{},
		},
		{
			name: "unparseable",
			edt:  &calendar.EventDateTime{DateTime: "yesterday"},
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseEventTime(tt.edt); !got.Equal(tt.want) {
				t.Errorf("parseEventTime() = %v, want %v", got, tt.want)
			}
		})
	}
}
