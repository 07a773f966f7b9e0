// Package calendar_tools binds the calendar client's operations to the tool
// registry: list_events, search_events, create_event, and delete_event.
//
// Handlers parse the generic JSON input the model produced, call the
// calendar service, and render plain-text results for the tool protocol.
package calendar_tools
