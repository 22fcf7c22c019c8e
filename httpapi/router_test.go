package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/matiq-hq/matiq-api/auth"
	"github.com/matiq-hq/matiq-api/health"
)

var testSecret = []byte("router-test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(overrides jwt.MapClaims) jwt.MapClaims {
	claims := jwt.MapClaims{
		"sub":   "550e8400-e29b-41d4-a716-446655440000",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Add(-time.Minute).Unix(),
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	verifier := auth.NewVerifier(auth.NewStaticKeyResolver(auth.KeyMaterial{
		Key:       testSecret,
		Algorithm: auth.AlgorithmHS256,
	}))
	api := NewAPI(auth.NewGate(verifier), nil, nil, nil, "test")
	return NewRouter(RouterConfig{
		API:    api,
		Health: health.NewAggregator(time.Second),
	})
}

func get(t *testing.T, router http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRootIsPublic(t *testing.T) {
	rec := get(t, newTestRouter(t), "/", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/api/v1/auth/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("WWW-Authenticate challenge missing")
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "no_credential" {
		t.Errorf("error = %q, want no_credential", body["error"])
	}
}

func TestMeReturnsIdentity(t *testing.T) {
	router := newTestRouter(t)
	token := signToken(t, validClaims(jwt.MapClaims{"role": "coach"}))

	rec := get(t, router, "/api/v1/auth/me", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.UserID != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("user_id = %q", body.UserID)
	}
	if body.Email != "user@example.com" {
		t.Errorf("email = %q", body.Email)
	}
	if !body.Authenticated {
		t.Error("authenticated = false")
	}
	if body.AdditionalClaims["role"] != "coach" {
		t.Errorf("additional_claims = %v, want role passthrough", body.AdditionalClaims)
	}
	if _, ok := body.AdditionalClaims["sub"]; ok {
		t.Error("sub leaked into additional_claims")
	}
}

func TestMeExpiredToken(t *testing.T) {
	router := newTestRouter(t)
	token := signToken(t, validClaims(jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
	}))

	rec := get(t, router, "/api/v1/auth/me", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "expired" {
		t.Errorf("error = %q, want expired", body["error"])
	}
}

func TestTokenInfo(t *testing.T) {
	router := newTestRouter(t)
	iat := time.Now().Add(-time.Minute).Unix()
	exp := time.Now().Add(time.Hour).Unix()
	token := signToken(t, jwt.MapClaims{
		"sub":   "u1",
		"email": "user@example.com",
		"exp":   exp,
		"iat":   iat,
		"aud":   "authenticated",
		"iss":   "https://proj.supabase.co/auth/v1",
		"role":  "authenticated",
	})

	rec := get(t, router, "/api/v1/auth/token-info", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body TokenInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.UserID != "u1" || body.Email != "user@example.com" {
		t.Errorf("identity = %+v", body)
	}
	if body.IssuedAt != iat || body.ExpiresAt != exp {
		t.Errorf("timestamps = %d/%d, want %d/%d", body.IssuedAt, body.ExpiresAt, iat, exp)
	}
	if body.Audience != "authenticated" {
		t.Errorf("audience = %q", body.Audience)
	}
	if body.Issuer != "https://proj.supabase.co/auth/v1" {
		t.Errorf("issuer = %q", body.Issuer)
	}
	if body.Role != "authenticated" {
		t.Errorf("role = %q", body.Role)
	}
}

func TestProtectedAction(t *testing.T) {
	router := newTestRouter(t)
	token := signToken(t, validClaims(nil))

	payload, _ := json.Marshal(ProtectedActionRequest{
		Action: "update_profile",
		Data:   map[string]any{"theme": "dark"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/protected-action", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body ProtectedActionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.PerformedBy != "user@example.com" {
		t.Errorf("performed_by = %q", body.PerformedBy)
	}
	if body.ActionData["theme"] != "dark" {
		t.Errorf("action_data = %v", body.ActionData)
	}
}

func TestProtectedActionRejectsBadBody(t *testing.T) {
	router := newTestRouter(t)
	token := signToken(t, validClaims(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/protected-action", bytes.NewReader([]byte("{")))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPublicWithOptionalAuth(t *testing.T) {
	router := newTestRouter(t)

	t.Run("anonymous", func(t *testing.T) {
		rec := get(t, router, "/api/v1/auth/public-with-optional-auth", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var body PublicEndpointResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Authenticated || body.UserInfo != nil || body.PremiumData != "" {
			t.Errorf("anonymous response leaked premium fields: %+v", body)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		rec := get(t, router, "/api/v1/auth/public-with-optional-auth", signToken(t, validClaims(nil)))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var body PublicEndpointResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if !body.Authenticated || body.UserInfo == nil || body.PremiumData == "" {
			t.Errorf("authenticated response missing premium fields: %+v", body)
		}
	})

	t.Run("invalid token still errors", func(t *testing.T) {
		rec := get(t, router, "/api/v1/auth/public-with-optional-auth", "not-a-jwt")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401 for present-but-bad token", rec.Code)
		}
	})
}

func TestAdminStats(t *testing.T) {
	router := newTestRouter(t)

	t.Run("admin allowed", func(t *testing.T) {
		rec := get(t, router, "/api/v1/admin/stats", signToken(t, validClaims(jwt.MapClaims{"role": "admin"})))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var body AdminStatsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Version != "test" {
			t.Errorf("version = %q", body.Version)
		}
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		rec := get(t, router, "/api/v1/admin/stats", signToken(t, validClaims(jwt.MapClaims{"role": "coach"})))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["error"] != "forbidden" || body["required_role"] != "admin" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("anonymous unauthorized", func(t *testing.T) {
		if rec := get(t, router, "/api/v1/admin/stats", ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/health"} {
		if rec := get(t, router, path, ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	if rec := get(t, router, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d, want 200", rec.Code)
	}
}
