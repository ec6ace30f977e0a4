package webhook

import (
	"encoding/json"
	"strings"
)

// OutcomeKind discriminates the three terminal results of a forwarded call.
type OutcomeKind int

const (
	// OutcomeSuccess: the webhook answered with a success status and a structured body.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeActionError: the webhook answered, but signalled failure or returned
	// an unstructured body; the raw text is preserved for the caller.
	OutcomeActionError
	// OutcomeTransportFailure: the HTTP call never completed.
	OutcomeTransportFailure
)

// Invocation is one inbound tool call, consumed once by the forwarder.
type Invocation struct {
	CallId    string
	Tool      string
	Action    string
	Arguments map[string]interface{}
}

// Outcome is the immutable result of attempting the downstream call.
// Exactly one kind applies; Payload is set for structured success bodies,
// Raw for anything the caller should see verbatim.
type Outcome struct {
	Kind       OutcomeKind
	Payload    interface{}
	Raw        string
	StatusCode int
	Timeout    bool
}

// Structured returns the payload as an object when it is one.
func (o *Outcome) Structured() map[string]interface{} {
	ret, _ := o.Payload.(map[string]interface{})
	return ret
}

// Text renders the outcome for the tool result content. Webhook replies
// commonly wrap the human readable part in a "message" field, or arrive as a
// list of items carrying "output"; anything else degrades to compact JSON.
func (o *Outcome) Text() string {
	switch actual := o.Payload.(type) {
	case map[string]interface{}:
		if message, ok := actual["message"].(string); ok && strings.TrimSpace(message) != "" {
			return message
		}
	case []interface{}:
		var outputs []string
		for _, item := range actual {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if output, ok := entry["output"].(string); ok && strings.TrimSpace(output) != "" {
				outputs = append(outputs, strings.TrimSpace(output))
			}
		}
		if len(outputs) > 0 {
			return strings.Join(outputs, "\n\n")
		}
	case nil:
		return o.Raw
	}
	data, err := json.Marshal(o.Payload)
	if err != nil {
		return o.Raw
	}
	return string(data)
}
