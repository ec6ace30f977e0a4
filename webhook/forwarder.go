// Package webhook issues one outbound HTTP call per invocation and normalizes
// the reply into a uniform outcome. Retry policy belongs to the downstream
// action, not here: a single bounded attempt per invocation.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single webhook attempt.
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 2000

// Forwarder posts invocations to a fixed endpoint URL. The HTTP client and
// URL are process-wide read-only state, initialized once.
type Forwarder struct {
	url    string
	client *http.Client
}

type body struct {
	Tool      string                 `json:"tool"`
	CallId    string                 `json:"call_id"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Forward issues the HTTP POST for an invocation and normalizes the result.
// It never returns an error: every failure mode maps onto an outcome the
// caller relays to the session.
func (f *Forwarder) Forward(ctx context.Context, invocation *Invocation) *Outcome {
	payload, err := json.Marshal(&body{
		Tool:      invocation.Tool,
		CallId:    invocation.CallId,
		Arguments: invocation.Arguments,
	})
	if err != nil {
		return &Outcome{Kind: OutcomeTransportFailure, Raw: fmt.Sprintf("failed to encode request: %v", err)}
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return &Outcome{Kind: OutcomeTransportFailure, Raw: fmt.Sprintf("failed to build request: %v", err)}
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := f.client.Do(request)
	if err != nil {
		return transportFailure(err)
	}
	defer response.Body.Close()
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return transportFailure(err)
	}

	var parsed interface{}
	structured := json.Unmarshal(data, &parsed) == nil

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &Outcome{
			Kind:       OutcomeActionError,
			Payload:    parsedOrNil(structured, parsed),
			Raw:        preview(data),
			StatusCode: response.StatusCode,
		}
	}
	if !structured {
		// The body is not structured data; forward the raw text rather than
		// discard it so the caller sees something actionable.
		return &Outcome{Kind: OutcomeActionError, Raw: preview(data), StatusCode: response.StatusCode}
	}
	return &Outcome{Kind: OutcomeSuccess, Payload: parsed, Raw: string(data), StatusCode: response.StatusCode}
}

func parsedOrNil(structured bool, parsed interface{}) interface{} {
	if structured {
		return parsed
	}
	return nil
}

func transportFailure(err error) *Outcome {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr interface{ Timeout() bool }
	if !timeout && errors.As(err, &netErr) {
		timeout = netErr.Timeout()
	}
	reason := err.Error()
	if timeout {
		reason = fmt.Sprintf("webhook call timed out: %v", err)
	}
	return &Outcome{Kind: OutcomeTransportFailure, Raw: reason, Timeout: timeout}
}

func preview(data []byte) string {
	if len(data) > maxErrorBody {
		data = data[:maxErrorBody]
	}
	return string(data)
}

// URL returns the configured endpoint URL.
func (f *Forwarder) URL() string {
	return f.url
}

// New creates a forwarder with a dedicated HTTP client enforcing the timeout.
// A zero timeout falls back to DefaultTimeout.
func New(url string, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Forwarder{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}
