package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/teemow/calagent/internal/calendar"
	"github.com/teemow/calagent/internal/tools"
)

// Default listing window when the model gives no bounds.
const (
	defaultWindow     = 7 * 24 * time.Hour
	defaultMaxResults = 10
)

// Service is the calendar surface the tools dispatch against.
// *calendar.Client satisfies it.
type Service interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]calendar.EventSummary, error)
	SearchEvents(ctx context.Context, calendarID, query string, timeMin, timeMax time.Time) ([]calendar.EventSummary, error)
	CreateEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.EventSummary, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Register registers the calendar tools with the registry.
func Register(reg *tools.Registry, svc Service) error {
	specs := []struct {
		spec    tools.Spec
		handler tools.Handler
	}{
		{listEventsSpec(), handleListEvents(svc)},
		{searchEventsSpec(), handleSearchEvents(svc)},
		{createEventSpec(), handleCreateEvent(svc)},
		{deleteEventSpec(), handleDeleteEvent(svc)},
	}

	for _, s := range specs {
		if err := reg.Register(s.spec, s.handler); err != nil {
			return fmt.Errorf("failed to register %s: %w", s.spec.Name, err)
		}
	}
	return nil
}

func listEventsSpec() tools.Spec {
	return tools.Spec{
		Name:        "list_events",
		Description: "List upcoming calendar events within a time range",
		InputSchema: tools.ObjectSchema(map[string]tools.Property{
			"calendarId": {Type: "string", Description: "Calendar ID (defaults to 'primary')"},
			"timeMin":    {Type: "string", Description: "Start of the range (RFC3339, e.g. '2026-01-05T00:00:00Z'). Defaults to now."},
			"timeMax":    {Type: "string", Description: "End of the range (RFC3339). Defaults to seven days from now."},
			"maxResults": {Type: "integer", Description: "Maximum number of events to return (default 10)"},
		}),
	}
}

func handleListEvents(svc Service) tools.Handler {
	return func(ctx context.Context, input map[string]any) (string, error) {
		calendarID := stringArg(input, "calendarId", calendar.DefaultCalendarID)

		timeMin, timeMax, err := windowArgs(input)
		if err != nil {
			return "", err
		}

		maxResults := intArg(input, "maxResults", defaultMaxResults)
		events, err := svc.ListEvents(ctx, calendarID, timeMin, timeMax, maxResults)
		if err != nil {
			return "", err
		}
		return calendar.FormatEventList(events), nil
	}
}

func searchEventsSpec() tools.Spec {
	return tools.Spec{
		Name:        "search_events",
		Description: "Search calendar events by free-text query within a time range",
		InputSchema: tools.ObjectSchema(map[string]tools.Property{
			"query":      {Type: "string", Description: "Free-text search query"},
			"calendarId": {Type: "string", Description: "Calendar ID (defaults to 'primary')"},
			"timeMin":    {Type: "string", Description: "Start of the range (RFC3339). Defaults to now."},
			"timeMax":    {Type: "string", Description: "End of the range (RFC3339). Defaults to seven days from now."},
		}, "query"),
	}
}

func handleSearchEvents(svc Service) tools.Handler {
	return func(ctx context.Context, input map[string]any) (string, error) {
		query := stringArg(input, "query", "")
		if query == "" {
			return "", fmt.Errorf("query is required")
		}
		calendarID := stringArg(input, "calendarId", calendar.DefaultCalendarID)

		timeMin, timeMax, err := windowArgs(input)
		if err != nil {
			return "", err
		}

		events, err := svc.SearchEvents(ctx, calendarID, query, timeMin, timeMax)
		if err != nil {
			return "", err
		}
		return calendar.FormatSearchResults(query, events), nil
	}
}

func createEventSpec() tools.Spec {
	return tools.Spec{
		Name:        "create_event",
		Description: "Create a new calendar event",
		InputSchema: tools.ObjectSchema(map[string]tools.Property{
			"summary":     {Type: "string", Description: "Event title"},
			"start":       {Type: "string", Description: "Start time (RFC3339, e.g. '2026-01-15T14:00:00Z')"},
			"end":         {Type: "string", Description: "End time (RFC3339)"},
			"description": {Type: "string", Description: "Event description"},
			"location":    {Type: "string", Description: "Event location"},
			"attendees":   {Type: "array", Description: "Attendee email addresses", Items: &tools.Property{Type: "string"}},
			"timeZone":    {Type: "string", Description: "Time zone (e.g. 'Europe/Berlin'). Defaults to UTC."},
			"calendarId":  {Type: "string", Description: "Calendar ID (defaults to 'primary')"},
		}, "summary", "start", "end"),
	}
}

func handleCreateEvent(svc Service) tools.Handler {
	return func(ctx context.Context, input map[string]any) (string, error) {
		summary := stringArg(input, "summary", "")
		if summary == "" {
			return "", fmt.Errorf("summary is required")
		}

		start, err := timeArg(input, "start")
		if err != nil {
			return "", err
		}
		end, err := timeArg(input, "end")
		if err != nil {
			return "", err
		}
		// Start/end ordering is deliberately not validated here; the
		// calendar service decides what it accepts.

		created, err := svc.CreateEvent(ctx, stringArg(input, "calendarId", calendar.DefaultCalendarID), calendar.EventInput{
			Summary:     summary,
			Description: stringArg(input, "description", ""),
			Location:    stringArg(input, "location", ""),
			Start:       start,
			End:         end,
			TimeZone:    stringArg(input, "timeZone", ""),
			Attendees:   stringSliceArg(input, "attendees"),
		})
		if err != nil {
			return "", err
		}
		return calendar.FormatCreated(created), nil
	}
}

func deleteEventSpec() tools.Spec {
	return tools.Spec{
		Name:        "delete_event",
		Description: "Delete a calendar event by its ID",
		InputSchema: tools.ObjectSchema(map[string]tools.Property{
			"eventId":    {Type: "string", Description: "The ID of the event to delete"},
			"calendarId": {Type: "string", Description: "Calendar ID (defaults to 'primary')"},
		}, "eventId"),
	}
}

func handleDeleteEvent(svc Service) tools.Handler {
	return func(ctx context.Context, input map[string]any) (string, error) {
		eventID := stringArg(input, "eventId", "")
		if eventID == "" {
			return "", fmt.Errorf("eventId is required")
		}

		if err := svc.DeleteEvent(ctx, stringArg(input, "calendarId", calendar.DefaultCalendarID), eventID); err != nil {
			return "", err
		}
		return calendar.FormatDeleted(eventID), nil
	}
}
