// Package server implements the MCP (Model Context Protocol) server that
// exposes the effects engine as tools.
//
// One server holds one editing session: an open canvas (a layered
// document), the effect registry, and a render coordinator that owns the
// undo history.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Canvas:
//   - canvas_open, canvas_new: start a session from a file or a fill color
//   - canvas_info: size, layers and history position
//   - canvas_save: flatten and encode to disk
//   - canvas_preview: base64 PNG of a region, or of what changed ("dirty")
//   - canvas_sample_color, canvas_histogram: inspect pixels
//
// Layers:
//   - layer_add, layer_select
//
// Effects:
//   - effect_list: registry listing with default parameters
//   - effect_apply: render an effect onto the active layer
//
// History:
//   - history_list, history_undo, history_redo, history_jump
//
// Reaching either end of the history is reported in the tool result with
// changed=false rather than as an error.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, version)
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
package server
