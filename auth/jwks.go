package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// jwksPath is the well-known key-set path appended to the discovery base URL.
const jwksPath = "/auth/v1/.well-known/jwks.json"

// JWKSClient fetches the published key set from the identity provider's
// discovery endpoint.
type JWKSClient struct {
	url        string
	httpClient *http.Client
}

// NewJWKSClient creates a JWKS client for the given discovery base URL.
// A zero timeout defaults to 10 seconds.
func NewJWKSClient(baseURL string, timeout time.Duration) *JWKSClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &JWKSClient{
		url:        strings.TrimSuffix(baseURL, "/") + jwksPath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL returns the full key-set URL the client fetches from.
func (c *JWKSClient) URL() string {
	return c.url
}

// FetchKey retrieves the key set and returns the first published key as an
// RSA public key. The issuing system publishes its current signing key
// first, so only keys[0] is consulted.
func (c *JWKSClient) FetchKey(ctx context.Context) (*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch JWKS: unexpected status %d", resp.StatusCode)
	}

	var jwks jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("decode JWKS: %w", err)
	}

	if len(jwks.Keys) == 0 {
		return nil, errors.New("JWKS contains no keys")
	}

	key, err := parseRSAPublicKey(jwks.Keys[0])
	if err != nil {
		return nil, fmt.Errorf("parse JWK: %w", err)
	}
	return key, nil
}

// jwksResponse is the JWKS endpoint response format.
type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

// jwkKey represents a single JWK.
type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// parseRSAPublicKey converts a JWK to an RSA public key.
func parseRSAPublicKey(jwk jwkKey) (*rsa.PublicKey, error) {
	if jwk.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type %q", jwk.Kty)
	}
	if jwk.N == "" {
		return nil, errors.New("missing n parameter")
	}
	if jwk.E == "" {
		return nil, errors.New("missing e parameter")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("decode n: %w", err)
	}
	n := new(big.Int).SetBytes(nBytes)

	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("decode e: %w", err)
	}
	e := new(big.Int).SetBytes(eBytes)

	return &rsa.PublicKey{
		N: n,
		E: int(e.Int64()),
	}, nil
}
