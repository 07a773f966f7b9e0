// Package tools declares the callable operations exposed to the model and
// dispatches named calls to their handlers.
//
// A tool is registered once with a Spec (name, description, JSON-schema-shaped
// input schema) and a Handler. Dispatch converts every failure mode into a
// textual error result instead of raising, which guarantees the conversation
// loop receives exactly one result per call.
package tools
