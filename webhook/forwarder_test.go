package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestForwarder_Success(t *testing.T) {
	var received body
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(request.Body).Decode(&received))
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":"ok","message":"volume set to 50"}`))
	}))
	defer server.Close()

	forwarder := New(server.URL, time.Second)
	outcome := forwarder.Forward(context.Background(), &Invocation{
		CallId:    "c-1",
		Tool:      "webhook_action",
		Action:    "set_volume",
		Arguments: map[string]interface{}{"action": "set_volume", "payload": map[string]interface{}{"level": 50}},
	})

	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "volume set to 50", outcome.Text())
	assert.Equal(t, "ok", outcome.Structured()["status"])

	assert.Equal(t, "webhook_action", received.Tool)
	assert.Equal(t, "c-1", received.CallId)
	assert.Equal(t, "set_volume", received.Arguments["action"])
}

func TestForwarder_ActionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	forwarder := New(server.URL, time.Second)
	outcome := forwarder.Forward(context.Background(), &Invocation{CallId: "c-2", Tool: "webhook_action", Action: "reboot"})

	assert.Equal(t, OutcomeActionError, outcome.Kind)
	assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
	// The raw body text is preserved verbatim for the error message.
	assert.Equal(t, "internal error\n", outcome.Raw)
	assert.False(t, outcome.Timeout)
}

func TestForwarder_UnstructuredReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte("plain text, not json"))
	}))
	defer server.Close()

	forwarder := New(server.URL, time.Second)
	outcome := forwarder.Forward(context.Background(), &Invocation{CallId: "c-3", Tool: "webhook_action", Action: "status"})

	// A success status with an unstructured body is still an action error; the
	// caller gets the raw text rather than a fabricated result.
	assert.Equal(t, OutcomeActionError, outcome.Kind)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Equal(t, "plain text, not json", outcome.Raw)
}

func TestForwarder_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		select {
		case <-release:
		case <-request.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	forwarder := New(server.URL, 50*time.Millisecond)
	outcome := forwarder.Forward(context.Background(), &Invocation{CallId: "c-4", Tool: "webhook_action", Action: "slow"})

	assert.Equal(t, OutcomeTransportFailure, outcome.Kind)
	assert.True(t, outcome.Timeout)
	assert.Contains(t, outcome.Raw, "timed out")
}

func TestForwarder_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	forwarder := New(server.URL, time.Second)
	outcome := forwarder.Forward(context.Background(), &Invocation{CallId: "c-5", Tool: "webhook_action", Action: "ping"})

	assert.Equal(t, OutcomeTransportFailure, outcome.Kind)
	assert.False(t, outcome.Timeout)
	assert.NotEmpty(t, outcome.Raw)
}

func TestOutcome_Text(t *testing.T) {
	// The message field wins when present.
	outcome := &Outcome{Payload: map[string]interface{}{"message": "done", "status": "ok"}}
	assert.Equal(t, "done", outcome.Text())

	// A list reply joins its output fields.
	outcome = &Outcome{Payload: []interface{}{
		map[string]interface{}{"output": "first"},
		map[string]interface{}{"output": "second"},
	}}
	assert.Equal(t, "first\n\nsecond", outcome.Text())

	// Anything else degrades to compact JSON.
	outcome = &Outcome{Payload: map[string]interface{}{"status": "ok"}}
	assert.Equal(t, `{"status":"ok"}`, outcome.Text())

	// No payload falls back to the raw body.
	outcome = &Outcome{Raw: "raw body"}
	assert.Equal(t, "raw body", outcome.Text())
}
