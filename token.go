package wsbridge

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/scy"
)

// loadToken fetches the session token from a secret resource.
func loadToken(ctx context.Context, URL, key string) (string, error) {
	service := scy.New()
	resource := scy.NewResource(nil, URL, key)
	secret, err := service.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load token from %v: %w", URL, err)
	}
	token := strings.TrimSpace(secret.String())
	if token == "" {
		return "", fmt.Errorf("token resource %v was empty", URL)
	}
	return token, nil
}

// endpointWithToken returns the endpoint URL with the token query parameter
// set; a token already embedded in the URL wins.
func endpointWithToken(endpoint, token string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL %v: %w", endpoint, err)
	}
	query := parsed.Query()
	if query.Get("token") == "" {
		query.Set("token", token)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}

// endpointToken extracts the token query parameter from the endpoint URL.
func endpointToken(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("token")
}

// tokenClaims returns the unverified claims of a JWT token. The bridge never
// validates the signature - the endpoint does that - the claims are only used
// for startup diagnostics.
func tokenClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// claimExpiry returns the exp claim as time, or zero time when absent.
func claimExpiry(claims jwt.MapClaims) time.Time {
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}
	}
	return expiry.Time
}
