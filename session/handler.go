package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/wsbridge/codec"
	"github.com/viant/wsbridge/correlator"
	"github.com/viant/wsbridge/internal/conv"
	bschema "github.com/viant/wsbridge/schema"
	"github.com/viant/wsbridge/webhook"
)

// The original endpoint issues a non-standard shutdown request when it wants
// the bridge gone for good.
const methodShutdown = "shutdown"

// handle processes one inbound frame; a non-nil return terminates the session.
func (m *Manager) handle(ctx context.Context, data []byte) error {
	message, err := codec.Decode(data)
	if err != nil {
		var malformed *codec.MalformedError
		if errors.As(err, &malformed) && malformed.Id != nil {
			// The id is addressable, answer with a protocol error.
			m.respondError(ctx, malformed.Id, jsonrpc.NewParsingError(err.Error(), nil))
			return nil
		}
		m.logger.Errorf(ctx, "dropping undecodable frame: %v", err)
		return nil
	}
	switch message.Kind {
	case codec.KindRequest:
		return m.serveRequest(ctx, message.Request)
	case codec.KindNotification:
		m.onNotification(ctx, message.Notification)
	case codec.KindResponse:
		m.logger.Debugf(ctx, "ignoring response frame for id %v", message.Response.Id)
	}
	return nil
}

// serveRequest dispatches one JSON-RPC request, mirroring the method surface
// the endpoint exercises.
func (m *Manager) serveRequest(ctx context.Context, request *jsonrpc.Request) error {
	if jsonrpc.Version != request.Jsonrpc {
		m.respondError(ctx, request.Id, jsonrpc.NewInvalidRequest("invalid JSON-RPC version", nil))
		return nil
	}
	switch request.Method {
	case schema.MethodInitialize:
		m.initialize(ctx, request)
	case schema.MethodPing:
		m.respondResult(ctx, request.Id, &schema.PingResult{})
	case schema.MethodToolsList:
		m.listTools(ctx, request)
	case schema.MethodToolsCall:
		m.callTool(ctx, request)
	case schema.MethodLoggingSetLevel:
		m.setLevel(ctx, request)
	case methodShutdown:
		m.respondResult(ctx, request.Id, struct{}{})
		m.requestStop()
		return errShutdown
	default:
		m.logger.Warningf(ctx, "unhandled method: %v", request.Method)
		m.respondError(ctx, request.Id, jsonrpc.NewMethodNotFound(fmt.Sprintf("method: %v not found", request.Method), request.Params))
	}
	return nil
}

// initialize answers the registration handshake, advertising the tools
// capability and echoing the protocol version the endpoint asked for.
func (m *Manager) initialize(ctx context.Context, request *jsonrpc.Request) {
	params := schema.InitializeRequestParams{}
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &params); err != nil {
			m.respondError(ctx, request.Id, jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse %v", err), request.Params))
			return
		}
	}
	version := params.ProtocolVersion
	if version == "" {
		version = m.config.ProtocolVersion
	}
	result := &schema.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    schema.ServerCapabilities{Tools: &schema.ServerCapabilitiesTools{}},
		ServerInfo:      m.config.Info,
	}
	m.respondResult(ctx, request.Id, result)
	if !m.config.RequireAck {
		m.toActive(ctx)
	}
}

// listTools advertises the single configured tool.
func (m *Manager) listTools(ctx context.Context, request *jsonrpc.Request) {
	result := &schema.ListToolsResult{Tools: []schema.Tool{m.config.Tool.Tool()}}
	m.respondResult(ctx, request.Id, result)
}

// setLevel handles the logging/setLevel method.
func (m *Manager) setLevel(ctx context.Context, request *jsonrpc.Request) {
	setLevelRequest := &schema.SetLevelRequest{Method: request.Method}
	if err := json.Unmarshal(request.Params, &setLevelRequest.Params); err != nil {
		m.respondError(ctx, request.Id, jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params))
		return
	}
	m.logger.SetRemoteLevel(setLevelRequest.Params.Level)
	m.respondResult(ctx, request.Id, &schema.SetLevelResult{})
}

// callTool validates one invocation, registers it with the correlator and
// forwards it on its own goroutine so the read loop keeps serving other
// concurrent invocations.
func (m *Manager) callTool(ctx context.Context, request *jsonrpc.Request) {
	callRequest := &schema.CallToolRequest{Method: request.Method}
	if err := json.Unmarshal(request.Params, &callRequest.Params); err != nil {
		m.respondError(ctx, request.Id, jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params))
		return
	}
	params := callRequest.Params
	if params.Name != m.config.Tool.Name {
		m.logger.Warningf(ctx, "received call for unknown tool %q", params.Name)
		m.respondError(ctx, request.Id, bschema.NewUnknownTool(params.Name))
		return
	}
	arguments := params.Arguments
	if arguments == nil {
		m.respondError(ctx, request.Id, jsonrpc.NewInvalidParamsError("Tool arguments must be an object", request.Params))
		return
	}
	action, _ := arguments["action"].(string)
	if strings.TrimSpace(action) == "" {
		m.respondError(ctx, request.Id, jsonrpc.NewInvalidParamsError("Tool arguments must include non-empty 'action'", request.Params))
		return
	}

	callId := conv.AsString(request.Id)
	pending, err := m.correlator.Register(callId, request.Id)
	if err != nil {
		m.logger.Warningf(ctx, "rejecting duplicate call id %v", callId)
		m.respondError(ctx, request.Id, bschema.NewDuplicateCallId(callId))
		return
	}
	invocation := &webhook.Invocation{
		CallId:    callId,
		Tool:      params.Name,
		Action:    action,
		Arguments: arguments,
	}
	m.logger.Infof(ctx, "forwarding call %v action %q to %v", callId, action, m.forwarder.URL())

	forwardCtx, cancel := context.WithCancel(ctx)
	m.active.Put(pending, cancel)
	go func() {
		defer cancel()
		outcome := m.forwarder.Forward(forwardCtx, invocation)
		m.active.Delete(pending)
		m.deliver(ctx, invocation, pending, outcome)
	}()
}

// deliver matches an asynchronous outcome back to the registration that
// spawned it and writes at most one response. Outcomes whose registration
// was cancelled or superseded are discarded.
func (m *Manager) deliver(ctx context.Context, invocation *webhook.Invocation, pending *correlator.Pending, outcome *webhook.Outcome) {
	if !m.correlator.Resolve(pending) {
		if pending.Cancelled() {
			m.logger.Infof(ctx, "discarding outcome for cancelled call %v", invocation.CallId)
		} else {
			m.logger.Warningf(ctx, "discarding stale outcome for call %v", invocation.CallId)
		}
		return
	}
	switch outcome.Kind {
	case webhook.OutcomeSuccess:
		isError := false
		result := &schema.CallToolResult{
			Content: []schema.CallToolResultContentElem{schema.TextContent{Type: "text", Text: outcome.Text()}},
			IsError: &isError,
		}
		if structured := outcome.Structured(); structured != nil {
			result.StructuredContent = structured
		}
		if echo, ok := invocation.Arguments["callId"].(string); ok && echo != "" {
			if result.StructuredContent == nil {
				result.StructuredContent = map[string]interface{}{}
			}
			if _, exists := result.StructuredContent["callId"]; !exists {
				result.StructuredContent["callId"] = echo
			}
		}
		m.respondResult(ctx, pending.RequestId, result)
	case webhook.OutcomeActionError:
		m.logger.Warningf(ctx, "webhook HTTP %v error for call %v", outcome.StatusCode, invocation.CallId)
		m.respondError(ctx, pending.RequestId, bschema.NewWebhookStatusError(outcome.StatusCode, outcome.Raw))
	case webhook.OutcomeTransportFailure:
		m.logger.Errorf(ctx, "webhook call %v failed: %v", invocation.CallId, outcome.Raw)
		m.respondError(ctx, pending.RequestId, bschema.NewWebhookUnreachable(outcome.Raw))
	}
}

// onNotification handles inbound notifications.
func (m *Manager) onNotification(ctx context.Context, notification *jsonrpc.Notification) {
	switch notification.Method {
	case schema.MethodNotificationInitialized:
		m.logger.Infof(ctx, "endpoint reports initialized")
		m.toActive(ctx)
	case schema.MethodNotificationCanceled:
		m.cancelCall(ctx, notification)
	default:
		m.logger.Debugf(ctx, "unhandled notification: %v", notification.Method)
	}
}

// cancelCall aborts the in-flight forwarder call addressed by a cancelled
// notification; its outcome will be discarded rather than written.
func (m *Manager) cancelCall(ctx context.Context, notification *jsonrpc.Notification) {
	var params schema.CancelledNotificationParams
	if err := json.Unmarshal(notification.Params, &params); err != nil {
		m.logger.Errorf(ctx, "failed to parse cancelled notification: %v", err)
		return
	}
	if params.RequestId == nil || *params.RequestId == 0 {
		return
	}
	callId := strconv.Itoa(int(*params.RequestId))
	pending := m.correlator.Cancel(callId)
	if pending == nil {
		return
	}
	if cancel, ok := m.active.Get(pending); ok {
		cancel()
	}
	m.logger.Infof(ctx, "call %v cancelled by endpoint", callId)
}

func (m *Manager) respondResult(ctx context.Context, id jsonrpc.RequestId, result interface{}) {
	data, err := codec.EncodeResult(id, result)
	if err != nil {
		m.logger.Errorf(ctx, "failed to encode result for id %v: %v", id, err)
		return
	}
	if err := m.write(data); err != nil {
		m.logger.Warningf(ctx, "failed to write response for id %v: %v", id, err)
	}
}

func (m *Manager) respondError(ctx context.Context, id jsonrpc.RequestId, rpcError *jsonrpc.Error) {
	data, err := codec.EncodeError(id, rpcError)
	if err != nil {
		m.logger.Errorf(ctx, "failed to encode error for id %v: %v", id, err)
		return
	}
	if err := m.write(data); err != nil {
		m.logger.Warningf(ctx, "failed to write error for id %v: %v", id, err)
	}
}
