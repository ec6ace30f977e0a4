// Package wsbridge connects a one-shot HTTP webhook to a long-lived MCP
// endpoint. The bridge dials the endpoint over WebSocket, registers a single
// tool, and translates each tools/call invocation into one webhook POST,
// relaying the outcome back as the JSON-RPC response.
//
// The package exposes the supervisor (Service) and its Options; the session
// lifecycle, invocation correlation and webhook delivery live in the
// session, correlator and webhook sub-packages.
package wsbridge
