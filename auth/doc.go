// Package auth implements the token validation pipeline and role-based
// access control for the MatIQ API.
//
// Identity is stateless: every request derives an Identity from the JWT it
// carries. Tokens are issued externally (Supabase); this package only
// verifies them, using either a shared secret or a public key discovered
// from the issuer's JWKS endpoint. Route handlers declare one of four
// access policies (none, optional, required, required-with-role) and the
// Gate evaluates it per request.
package auth
