// Package calendar provides a client for interacting with the Google Calendar API.
//
// The client covers the four operations calagent exposes to the model:
// listing, searching, creating, and deleting events on a calendar, plus
// plain-text formatting of results for tool output.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, authorizedHTTPClient, logger)
//	if err != nil {
//	    return err
//	}
//	events, err := client.ListEvents(ctx, calendar.DefaultCalendarID,
//	    time.Now(), time.Now().AddDate(0, 0, 7), 10)
package calendar
