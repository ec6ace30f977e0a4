package wsbridge

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestEndpointWithToken(t *testing.T) {
	// The token is appended when absent.
	actual, err := endpointWithToken("wss://example.com/mcp", "abc")
	assert.NoError(t, err)
	assert.Equal(t, "wss://example.com/mcp?token=abc", actual)

	// An embedded token wins over the loaded one.
	actual, err = endpointWithToken("wss://example.com/mcp?token=xyz", "abc")
	assert.NoError(t, err)
	assert.Equal(t, "wss://example.com/mcp?token=xyz", actual)

	assert.Equal(t, "abc", endpointToken("wss://example.com/mcp?token=abc"))
	assert.Equal(t, "", endpointToken("wss://example.com/mcp"))
}

func TestTokenClaims(t *testing.T) {
	expiry := time.Now().Add(-time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"agentId": "agent-1",
		"exp":     expiry.Unix(),
	}).SignedString([]byte("secret"))
	assert.NoError(t, err)

	claims, err := tokenClaims(token)
	assert.NoError(t, err)
	assert.Equal(t, "agent-1", claims["agentId"])
	assert.Equal(t, expiry.Unix(), claimExpiry(claims).Unix())

	_, err = tokenClaims("not-a-jwt")
	assert.Error(t, err)
}
