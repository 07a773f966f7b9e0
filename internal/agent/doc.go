// Package agent drives the turn-by-turn exchange between the model and the
// tool registry.
//
// Each round sends the full conversation prefix to the model. A stop reason
// of end_turn ends the conversation with the assistant's text; tool_use makes
// the loop dispatch every requested call sequentially and feed the bundled
// results back before the next request. Any other stop reason is a protocol
// error.
package agent
