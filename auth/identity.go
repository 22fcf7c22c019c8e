package auth

// Identity represents the user authenticated by a verified token.
//
// An Identity is constructed fresh from a ClaimSet on every request and
// discarded when the request completes. It is never persisted and never
// shared across requests.
type Identity struct {
	// UserID is the token subject (sub claim). Never empty.
	UserID string

	// Email is the user's email address (email claim). Never empty.
	Email string

	// RawClaims holds every claim other than sub and email, passed
	// through verbatim for callers that need extra token data.
	RawClaims map[string]any
}

// Role returns the role claim carried in RawClaims, or empty string.
func (id *Identity) Role() string {
	r, _ := id.RawClaims["role"].(string)
	return r
}

// HasRole reports whether the identity carries exactly the given role.
// A missing role claim never matches.
func (id *Identity) HasRole(role string) bool {
	return role != "" && id.Role() == role
}

// Extract builds an Identity from a verified claim set.
//
// sub is checked before email; the first missing claim determines the
// returned error.
func Extract(claims ClaimSet) (*Identity, error) {
	userID := claims.Subject()
	if userID == "" {
		return nil, newError(KindMissingSubject, "token missing user id")
	}

	email := claims.Email()
	if email == "" {
		return nil, newError(KindMissingEmail, "token missing email")
	}

	raw := make(map[string]any, len(claims))
	for k, v := range claims {
		if k == "sub" || k == "email" {
			continue
		}
		raw[k] = v
	}

	return &Identity{
		UserID:    userID,
		Email:     email,
		RawClaims: raw,
	}, nil
}
