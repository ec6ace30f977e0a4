package schema

import (
	"fmt"

	"github.com/viant/jsonrpc"
)

const (
	// WebhookUnreachable signals that the downstream HTTP call never completed.
	WebhookUnreachable = -32001
	// WebhookStatus signals that the webhook responded with a failure status.
	WebhookStatus = -32010
	// DuplicateCallId signals that an invocation reused a still-pending call identifier.
	DuplicateCallId = -32011
)

// NewWebhookUnreachable creates a transport failure error for a call.
func NewWebhookUnreachable(reason string) *jsonrpc.Error {
	return jsonrpc.NewError(WebhookUnreachable, reason, nil)
}

// NewWebhookStatusError creates an error carrying the webhook's failure body
// verbatim, with the HTTP status in the error data.
func NewWebhookStatusError(status int, body string) *jsonrpc.Error {
	return jsonrpc.NewError(WebhookStatus, body, map[string]interface{}{"status": status})
}

// NewDuplicateCallId creates a duplicate call identifier error.
func NewDuplicateCallId(callId string) *jsonrpc.Error {
	return jsonrpc.NewError(DuplicateCallId, fmt.Sprintf("call %q is still pending", callId), nil)
}

// NewUnknownTool creates an error for a call addressing a tool this bridge does not advertise.
func NewUnknownTool(toolName string) *jsonrpc.Error {
	return jsonrpc.NewError(jsonrpc.InvalidParams, "Unknown tool: "+toolName, nil)
}
