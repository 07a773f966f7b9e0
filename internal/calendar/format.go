package calendar

import (
	"fmt"
	"strings"
	"time"
)

// FormatEventList renders events as plain text for the model.
// An empty list yields the fixed "no upcoming events" sentence.
func FormatEventList(events []EventSummary) string {
	if len(events) == 0 {
		return "No upcoming events found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d event(s):\n", len(events)))
	for _, e := range events {
		sb.WriteString(formatEventLine(e))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatSearchResults renders search matches, echoing the query in the
// empty case.
func FormatSearchResults(query string, events []EventSummary) string {
	if len(events) == 0 {
		return fmt.Sprintf("No events found matching %q.", query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d event(s) matching %q:\n", len(events), query))
	for _, e := range events {
		sb.WriteString(formatEventLine(e))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatCreated renders a confirmation for a newly created event.
func FormatCreated(e *EventSummary) string {
	return fmt.Sprintf("Created event %q (id: %s) from %s to %s.",
		e.Summary, e.ID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// FormatDeleted renders a confirmation for a deleted event.
func FormatDeleted(eventID string) string {
	return fmt.Sprintf("Deleted event %s.", eventID)
}

func formatEventLine(e EventSummary) string {
	var sb strings.Builder
	title := e.Summary
	if title == "" {
		title = "(no title)"
	}
	sb.WriteString(fmt.Sprintf("- %s: %s (id: %s)",
		e.Start.Format(time.RFC3339), title, e.ID))
	if e.Location != "" {
		sb.WriteString(" at " + e.Location)
	}
	if len(e.Attendees) > 0 {
		sb.WriteString(" with " + strings.Join(e.Attendees, ", "))
	}
	sb.WriteString("\n")
	return sb.String()
}
