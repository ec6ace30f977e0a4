// Package codec translates between raw session frames and JSON-RPC messages.
// It is pure translation with no side effects; the session manager decides
// the respond-vs-drop policy for malformed input.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/viant/jsonrpc"
)

// Kind discriminates decoded frame shapes.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest
	KindNotification
	KindResponse
)

// Message is a decoded inbound frame; exactly one of the pointers is set,
// matching Kind.
type Message struct {
	Kind         Kind
	Request      *jsonrpc.Request
	Notification *jsonrpc.Notification
	Response     *jsonrpc.Response
}

// MalformedError reports an undecodable frame. Id carries the request id when
// one could still be extracted, so the caller may address an error response.
type MalformedError struct {
	Id    jsonrpc.RequestId
	Data  []byte
	cause error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed message: %v", e.cause)
}

func (e *MalformedError) Unwrap() error {
	return e.cause
}

type envelope struct {
	Jsonrpc string            `json:"jsonrpc"`
	Id      jsonrpc.RequestId `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  json.RawMessage   `json:"params,omitempty"`
	Result  json.RawMessage   `json:"result,omitempty"`
	Error   *jsonrpc.Error    `json:"error,omitempty"`
}

// Decode classifies a raw frame as request, notification or response.
// Undecodable input yields *MalformedError with a best-effort id.
func Decode(data []byte) (*Message, error) {
	env := &envelope{}
	if err := json.Unmarshal(data, env); err != nil {
		return nil, &MalformedError{Id: extractId(data), Data: data, cause: err}
	}
	switch {
	case env.Method != "" && env.Id != nil:
		return &Message{Kind: KindRequest, Request: &jsonrpc.Request{
			Jsonrpc: env.Jsonrpc,
			Id:      env.Id,
			Method:  env.Method,
			Params:  env.Params,
		}}, nil
	case env.Method != "":
		return &Message{Kind: KindNotification, Notification: &jsonrpc.Notification{
			Jsonrpc: env.Jsonrpc,
			Method:  env.Method,
			Params:  env.Params,
		}}, nil
	case env.Result != nil || env.Error != nil:
		return &Message{Kind: KindResponse, Response: &jsonrpc.Response{
			Jsonrpc: env.Jsonrpc,
			Id:      env.Id,
			Result:  env.Result,
			Error:   env.Error,
		}}, nil
	}
	return nil, &MalformedError{Id: env.Id, Data: data, cause: fmt.Errorf("frame has neither method nor result")}
}

// extractId recovers a request id from otherwise undecodable input.
func extractId(data []byte) jsonrpc.RequestId {
	probe := struct {
		Id jsonrpc.RequestId `json:"id"`
	}{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil
	}
	return probe.Id
}

// EncodeRequest serializes an outbound request frame.
func EncodeRequest(id jsonrpc.RequestId, method string, params interface{}) ([]byte, error) {
	request, err := jsonrpc.NewRequest(method, params)
	if err != nil {
		return nil, err
	}
	request.Jsonrpc = jsonrpc.Version
	request.Id = id
	return json.Marshal(request)
}

// EncodeResult serializes a success response frame for the given request id.
func EncodeResult(id jsonrpc.RequestId, result interface{}) ([]byte, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: id, Result: data})
}

// EncodeError serializes an error response frame for the given request id.
func EncodeError(id jsonrpc.RequestId, rpcError *jsonrpc.Error) ([]byte, error) {
	return json.Marshal(&jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: id, Error: rpcError})
}

// EncodeNotification serializes an outbound notification frame.
func EncodeNotification(notification *jsonrpc.Notification) ([]byte, error) {
	notification.Jsonrpc = jsonrpc.Version
	return json.Marshal(notification)
}
