package auth

import "context"

type policyKind int

const (
	policyNone policyKind = iota
	policyOptional
	policyRequired
	policyRole
)

// Policy declares the authentication requirement of an operation.
//
// A policy is declared once per protected route, carries no state, and is
// evaluated per request against that request's credential.
type Policy struct {
	kind policyKind
	role string
}

// The three fixed policies. RequiredRole builds the fourth.
var (
	// NoAuthRequired runs the handler unconditionally; the credential is
	// never inspected.
	NoAuthRequired = Policy{kind: policyNone}

	// OptionalAuth proceeds without an identity when no credential is
	// offered, but a credential that is present must verify.
	OptionalAuth = Policy{kind: policyOptional}

	// RequiredAuth rejects requests without a verified identity.
	RequiredAuth = Policy{kind: policyRequired}
)

// RequiredRole requires a verified identity whose role claim equals role.
func RequiredRole(role string) Policy {
	return Policy{kind: policyRole, role: role}
}

// Role returns the role a RequiredRole policy demands, or empty string.
func (p Policy) Role() string {
	return p.role
}

func (p Policy) String() string {
	switch p.kind {
	case policyNone:
		return "none"
	case policyOptional:
		return "optional"
	case policyRequired:
		return "required"
	case policyRole:
		return "required_role:" + p.role
	default:
		return "unknown"
	}
}

// Gate evaluates access policies by composing credential extraction, token
// verification, and identity extraction.
type Gate struct {
	verifier *Verifier
}

// NewGate creates a gate around the given verifier.
func NewGate(verifier *Verifier) *Gate {
	return &Gate{verifier: verifier}
}

// Evaluate applies the policy to a raw Authorization header value.
//
// A nil Identity with nil error means the request proceeds anonymously
// (NoAuthRequired always, OptionalAuth when no credential was offered).
// Any returned error is a classified *Error; the handler must not run.
func (g *Gate) Evaluate(ctx context.Context, policy Policy, authorization string) (*Identity, error) {
	if policy.kind == policyNone {
		return nil, nil
	}

	token, err := BearerToken(authorization)
	if err != nil {
		// Optional relaxes only the absence case. A credential that is
		// offered but unusable is still an error under every other policy.
		if policy.kind == policyOptional {
			return nil, nil
		}
		return nil, err
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	identity, err := Extract(claims)
	if err != nil {
		return nil, err
	}

	if policy.kind == policyRole && !identity.HasRole(policy.role) {
		return nil, forbidden(policy.role)
	}

	return identity, nil
}
