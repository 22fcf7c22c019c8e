package httpapi

import (
	"github.com/matiq-hq/matiq-api/auth"
)

// UserResponse is the JSON view of an authenticated user.
type UserResponse struct {
	UserID           string         `json:"user_id"`
	Email            string         `json:"email"`
	Authenticated    bool           `json:"authenticated"`
	AdditionalClaims map[string]any `json:"additional_claims,omitempty"`
}

// NewUserResponse builds the user view from an identity.
func NewUserResponse(id *auth.Identity) UserResponse {
	return UserResponse{
		UserID:           id.UserID,
		Email:            id.Email,
		Authenticated:    true,
		AdditionalClaims: id.RawClaims,
	}
}

// TokenInfo is the JSON view of the current token's claims.
type TokenInfo struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"issued_at,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Audience  string `json:"audience,omitempty"`
	Issuer    string `json:"issuer,omitempty"`
	Role      string `json:"role,omitempty"`
}

// NewTokenInfo builds the token view from an identity. Timestamps and
// the optional claims come from the passthrough claims.
func NewTokenInfo(id *auth.Identity) TokenInfo {
	claims := auth.ClaimSet(id.RawClaims)

	info := TokenInfo{
		UserID:   id.UserID,
		Email:    id.Email,
		Audience: claims.Audience(),
		Issuer:   claims.Issuer(),
		Role:     claims.Role(),
	}
	if iat, ok := claims.IssuedAt(); ok {
		info.IssuedAt = iat.Unix()
	}
	if exp, ok := claims.ExpiresAt(); ok {
		info.ExpiresAt = exp.Unix()
	}
	return info
}

// PublicEndpointResponse is returned by the optional-auth demo
// endpoint. Premium fields are populated only for verified callers.
type PublicEndpointResponse struct {
	Message       string        `json:"message"`
	Authenticated bool          `json:"authenticated"`
	UserInfo      *UserResponse `json:"user_info,omitempty"`
	PublicData    string        `json:"public_data"`
	PremiumData   string        `json:"premium_data,omitempty"`
}

// ProtectedActionRequest is the body of the protected action endpoint.
type ProtectedActionRequest struct {
	Action string         `json:"action"`
	Data   map[string]any `json:"data,omitempty"`
}

// ProtectedActionResponse echoes a completed protected action.
type ProtectedActionResponse struct {
	Message     string         `json:"message"`
	PerformedBy string         `json:"performed_by"`
	UserID      string         `json:"user_id"`
	ActionData  map[string]any `json:"action_data,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

// ProfileResponse is the JSON view of the profile endpoint.
type ProfileResponse struct {
	Message     string         `json:"message"`
	UserID      string         `json:"user_id"`
	Email       string         `json:"email"`
	ProfileData map[string]any `json:"profile_data"`
}

// AdminStatsResponse reports service statistics to admin callers.
type AdminStatsResponse struct {
	UptimeSeconds  int64  `json:"uptime_seconds"`
	Goroutines     int    `json:"goroutines"`
	TrackedClients int    `json:"tracked_clients"`
	Version        string `json:"version"`
}
