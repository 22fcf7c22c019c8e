package auth

import "time"

// ClaimSet is the set of claims produced by verifying a token.
//
// A ClaimSet is read-only once produced: it is never merged or mutated,
// only inspected through the typed accessors or Get. Numeric claims carry
// the float64 representation JSON decoding produces.
type ClaimSet map[string]any

// Subject returns the sub claim, or empty string.
func (c ClaimSet) Subject() string {
	s, _ := c["sub"].(string)
	return s
}

// Email returns the email claim, or empty string.
func (c ClaimSet) Email() string {
	s, _ := c["email"].(string)
	return s
}

// Role returns the role claim, or empty string.
func (c ClaimSet) Role() string {
	s, _ := c["role"].(string)
	return s
}

// Issuer returns the iss claim, or empty string.
func (c ClaimSet) Issuer() string {
	s, _ := c["iss"].(string)
	return s
}

// Audience returns the aud claim. A string-array audience yields its
// first string element.
func (c ClaimSet) Audience() string {
	switch v := c["aud"].(type) {
	case string:
		return v
	case []any:
		for _, a := range v {
			if s, ok := a.(string); ok {
				return s
			}
		}
	}
	return ""
}

// ExpiresAt returns the exp claim as a time, and whether it was present
// and numeric.
func (c ClaimSet) ExpiresAt() (time.Time, bool) {
	return c.numericDate("exp")
}

// IssuedAt returns the iat claim as a time, and whether it was present
// and numeric.
func (c ClaimSet) IssuedAt() (time.Time, bool) {
	return c.numericDate("iat")
}

// Get returns the raw value of a claim by name.
func (c ClaimSet) Get(name string) (any, bool) {
	v, ok := c[name]
	return v, ok
}

func (c ClaimSet) numericDate(name string) (time.Time, bool) {
	switch v := c[name].(type) {
	case float64:
		sec := int64(v)
		nsec := int64((v - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec), true
	case int64:
		return time.Unix(v, 0), true
	}
	return time.Time{}, false
}
