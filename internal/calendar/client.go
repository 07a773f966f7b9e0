package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calagent/internal/logging"
)

// DefaultCalendarID addresses the user's primary calendar.
const DefaultCalendarID = "primary"

// Client wraps the Google Calendar service.
type Client struct {
	svc    *calendar.Service
	logger *slog.Logger
}

// NewClient creates a Calendar client over an already-authorized HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, logger: logger}, nil
}

// ListEvents lists events in a calendar within a time range, ordered by
// start time.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]EventSummary, error) {
	call := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	c.logger.Debug("listed events",
		logging.Operation("calendar.list_events"), "count", len(summaries))
	return summaries, nil
}

// SearchEvents finds events matching a free-text query within a time range.
func (c *Client) SearchEvents(ctx context.Context, calendarID, query string, timeMin, timeMax time.Time) ([]EventSummary, error) {
	call := c.svc.Events.List(calendarID).
		Context(ctx).
		Q(query).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	c.logger.Debug("searched events",
		logging.Operation("calendar.search_events"), "count", len(summaries))
	return summaries, nil
}

// CreateEvent creates a new calendar event. Start and end are passed through
// as given; the service, not the client, decides what it accepts.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if input.TimeZone == "" {
		input.TimeZone = "UTC"
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		event.Attendees = attendees
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	c.logger.Debug("created event",
		logging.Operation("calendar.create_event"), "event_id", created.Id)
	summary := toEventSummary(created)
	return &summary, nil
}

// DeleteEvent deletes a calendar event by id.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	c.logger.Debug("deleted event",
		logging.Operation("calendar.delete_event"), "event_id", eventID)
	return nil
}
