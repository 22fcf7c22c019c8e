package auth

import "strings"

// BearerToken extracts the token from an Authorization header value.
//
// The three failure conditions are distinguishable by error kind:
// an absent header and a non-Bearer scheme yield KindNoCredential,
// a Bearer scheme with an empty token yields KindEmptyToken.
// Extraction is transport-level only; no part of the token is inspected.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", newError(KindNoCredential, "authorization header required")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", newError(KindNoCredential, "authorization header must use the Bearer scheme")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", newError(KindEmptyToken, "bearer token is empty")
	}

	return token, nil
}
