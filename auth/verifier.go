package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier cryptographically validates tokens and produces claim sets.
//
// Verification is a pure function of the token, the current time, and the
// resolved key: the only shared state touched is the resolver's one-time
// key cache.
type Verifier struct {
	resolver KeyResolver
}

// NewVerifier creates a verifier backed by the given key resolver.
func NewVerifier(resolver KeyResolver) *Verifier {
	return &Verifier{resolver: resolver}
}

// Verify validates the token's signature and time-based claims and
// returns its claim set.
//
// The aud and iss claims are deliberately not verified: the issuing
// system does not set them consistently.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (ClaimSet, error) {
	material, err := v.resolver.ResolveKey(ctx)
	if err != nil {
		return nil, &Error{
			Kind:    KindValidationFailed,
			Message: "token validation failed",
			Cause:   err,
		}
	}

	token, err := jwt.Parse(tokenString,
		func(*jwt.Token) (any, error) { return material.Key, nil },
		jwt.WithValidMethods([]string{material.Algorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &Error{Kind: KindValidationFailed, Message: "token validation failed"}
	}

	return ClaimSet(claims), nil
}

// classifyParseError maps golang-jwt parse errors onto the auth taxonomy.
// A bad signature wins over a bad lifetime: a token signed with the wrong
// key is invalid no matter what its claims say.
func classifyParseError(err error) *Error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return &Error{Kind: KindInvalidToken, Message: "invalid token", Cause: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &Error{Kind: KindExpired, Message: "token has expired", Cause: err}
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return &Error{Kind: KindInvalidToken, Message: "invalid token", Cause: err}
	default:
		return &Error{Kind: KindValidationFailed, Message: "token validation failed", Cause: err}
	}
}
