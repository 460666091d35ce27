package flow

import (
	"context"
	"errors"
	"sync"
)

// FallbackInvalidLinkMessage is shown when the server rejects the activation
// link without a decodable message, or when the validation call itself fails.
const FallbackInvalidLinkMessage = "This activation link is invalid or has expired."

// GateState is the tri-state outcome of the token gate.
type GateState int

const (
	// GatePending means validation has not resolved yet.
	GatePending GateState = iota
	// GateValid means the server confirmed the activation pair.
	GateValid
	// GateInvalid means the server rejected the pair or the call failed.
	GateInvalid
)

// String returns the state name.
func (s GateState) String() string {
	switch s {
	case GateValid:
		return "valid"
	case GateInvalid:
		return "invalid"
	default:
		return "pending"
	}
}

// GateResult is the resolved gate outcome. User is populated only when State
// is GateValid; Message only when GateInvalid.
type GateResult struct {
	State   GateState
	User    User
	Message string
}

// TokenGate validates one (accountID, secret) pair exactly once. A transport
// failure and a server-side rejection are the same from the caller's point of
// view: the gate is closed and only the message differs.
type TokenGate struct {
	client    *Client
	accountID string
	secret    string

	mu     sync.Mutex
	result GateResult
}

// NewTokenGate creates a gate for the given activation pair. The pair is
// opaque to the gate; only the server decides validity.
func NewTokenGate(client *Client, accountID, secret string) *TokenGate {
	return &TokenGate{
		client:    client,
		accountID: accountID,
		secret:    secret,
		result:    GateResult{State: GatePending},
	}
}

// Validate resolves the gate. The validation request is issued at most once
// per gate; later calls return the cached result without touching the network.
func (g *TokenGate) Validate(ctx context.Context) GateResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.result.State != GatePending {
		return g.result
	}

	check, err := g.client.ValidateToken(ctx, g.accountID, g.secret)
	if err != nil {
		g.result = GateResult{State: GateInvalid, Message: invalidMessageFromError(err)}
		return g.result
	}

	if !check.Valid {
		message := check.Message
		if message == "" {
			message = FallbackInvalidLinkMessage
		}
		g.result = GateResult{State: GateInvalid, Message: message}
		return g.result
	}

	result := GateResult{State: GateValid}
	if check.User != nil {
		result.User = *check.User
	}
	g.result = result
	return g.result
}

// Result returns the current gate outcome without triggering validation.
func (g *TokenGate) Result() GateResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// invalidMessageFromError prefers a server-supplied message over the generic
// fallback text.
func invalidMessageFromError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FallbackInvalidLinkMessage
}
