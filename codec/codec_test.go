package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/jsonrpc"
)

func TestDecode(t *testing.T) {
	// A frame with method and id is a request.
	message, err := Decode([]byte(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"webhook_action"}}`))
	assert.NoError(t, err)
	assert.Equal(t, KindRequest, message.Kind)
	assert.EqualValues(t, 7, message.Request.Id)
	assert.Equal(t, "tools/call", message.Request.Method)

	// A frame with method but no id is a notification.
	message, err = Decode([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.NoError(t, err)
	assert.Equal(t, KindNotification, message.Kind)
	assert.Equal(t, "notifications/initialized", message.Notification.Method)

	// A frame with a result is a response.
	message, err = Decode([]byte(`{"jsonrpc":"2.0","id":7,"result":{}}`))
	assert.NoError(t, err)
	assert.Equal(t, KindResponse, message.Kind)
	assert.EqualValues(t, 7, message.Response.Id)

	// A frame with an error is a response too.
	message, err = Decode([]byte(`{"jsonrpc":"2.0","id":8,"error":{"code":-32601,"message":"not found"}}`))
	assert.NoError(t, err)
	assert.Equal(t, KindResponse, message.Kind)
	assert.EqualValues(t, -32601, message.Response.Error.Code)
}

func TestDecode_Malformed(t *testing.T) {
	// Invalid JSON with no recoverable id.
	_, err := Decode([]byte(`{"jsonrpc":`))
	assert.Error(t, err)
	malformed := &MalformedError{}
	assert.ErrorAs(t, err, &malformed)
	assert.Nil(t, malformed.Id)

	// Valid JSON that is neither request, notification nor response still
	// surfaces its id so the caller can address an error response.
	_, err = Decode([]byte(`{"jsonrpc":"2.0","id":11}`))
	assert.Error(t, err)
	malformed = &MalformedError{}
	assert.ErrorAs(t, err, &malformed)
	assert.EqualValues(t, 11, malformed.Id)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	data, err := EncodeRequest(2, "tools/call", map[string]interface{}{
		"name":      "webhook_action",
		"arguments": map[string]interface{}{"action": "light_on"},
	})
	assert.NoError(t, err)
	message, err := Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, KindRequest, message.Kind)
	assert.EqualValues(t, 2, message.Request.Id)
	assert.Equal(t, "tools/call", message.Request.Method)
	params := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(message.Request.Params, &params))
	assert.Equal(t, "webhook_action", params["name"])

	data, err = EncodeResult(3, map[string]interface{}{"status": "ok"})
	assert.NoError(t, err)
	message, err = Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, KindResponse, message.Kind)
	assert.EqualValues(t, 3, message.Response.Id)
	result := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(message.Response.Result, &result))
	assert.Equal(t, "ok", result["status"])

	data, err = EncodeError(4, jsonrpc.NewMethodNotFound("method: foo not found", nil))
	assert.NoError(t, err)
	message, err = Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, KindResponse, message.Kind)
	assert.EqualValues(t, -32601, message.Response.Error.Code)

	data, err = EncodeNotification(&jsonrpc.Notification{Method: "notifications/message"})
	assert.NoError(t, err)
	message, err = Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, KindNotification, message.Kind)
	assert.Equal(t, jsonrpc.Version, message.Notification.Jsonrpc)
}
