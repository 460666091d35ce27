package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/allisson/activation/internal/errors"
)

// Sentinel errors returned by Submit.
var (
	// ErrGate means the token gate is not valid; terminal for the page visit.
	ErrGate = apperrors.New("activation link is not valid")

	// ErrPolicyViolation means the candidate fails the password policy. Local
	// only; the network is never touched.
	ErrPolicyViolation = apperrors.New("password does not satisfy the policy")

	// ErrSubmitInFlight means a submission is already running.
	ErrSubmitInFlight = apperrors.New("a submission is already in progress")

	// ErrCreationFailed means the create-password call was rejected. The flow
	// stays retryable; FailureMessage carries the banner text.
	ErrCreationFailed = apperrors.New("password creation failed")
)

// User-facing messages for the flow outcomes.
const (
	// MsgPasswordCreated is the success message carried to the
	// profile-completion destination.
	MsgPasswordCreated = "Your password has been created."

	// MsgManualLogin is informational, not an error: the password exists but
	// the automatic login could not be completed.
	MsgManualLogin = "Your password has been created. Please sign in to continue."

	// MsgCreateFailed is the fallback banner text when the server rejects the
	// creation call without a decodable message.
	MsgCreateFailed = "Unable to create your password. Please try again."
)

// noticeDuration is how long transient notifications stay on screen.
const noticeDuration = 5 * time.Second

// State is the flow's position in the password-creation journey.
type State int

const (
	// StateAwaitingGate means the token gate has not resolved yet.
	StateAwaitingGate State = iota
	// StateBlocked means the gate resolved invalid; the form never unlocks.
	StateBlocked
	// StateReady means the gate is valid and the form accepts input.
	StateReady
	// StateSubmitting means a create or login call is in flight.
	StateSubmitting
	// StateCompleted means the password was created; see Outcome.
	StateCompleted
	// StateSubmissionFailed means the creation call failed; retryable.
	StateSubmissionFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateBlocked:
		return "blocked"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateSubmissionFailed:
		return "submission_failed"
	default:
		return "awaiting_gate"
	}
}

// Outcome subdivides StateCompleted. Both outcomes are successes: the account
// has a password either way.
type Outcome int

const (
	// OutcomeNone means the flow has not completed.
	OutcomeNone Outcome = iota
	// OutcomeAutoLoginSucceeded means the user was logged in transparently.
	OutcomeAutoLoginSucceeded
	// OutcomeAutoLoginFailed means login degraded to the manual path.
	OutcomeAutoLoginFailed
)

// Navigator is the post-flow routing collaborator.
type Navigator interface {
	// ToProfileCompletion routes to the profile-completion destination with
	// the merged user profile and a success message.
	ToProfileCompletion(user User, message string)

	// ToManualLogin routes to the manual login prompt, prefilled with the
	// username and an informational message.
	ToManualLogin(username, message string)
}

// Notifier shows transient notifications. Fire-and-forget: the flow never
// waits for dismissal.
type Notifier interface {
	Notify(message string, duration time.Duration)
}

// Flow owns one page visit of the password-creation journey. The gate result
// unlocks the form, the policy engine gates submission, and Submit runs the
// create-then-login sequence with independent failure handling per step.
//
// The flow models a single user session; the mutex only enforces the
// double-submit guard.
type Flow struct {
	client    *Client
	gate      *TokenGate
	navigator Navigator
	notifier  Notifier
	accountID string
	secret    string

	mu             sync.Mutex
	state          State
	outcome        Outcome
	candidate      string
	touched        bool
	created        bool
	failureMessage string
}

// NewFlow creates a flow for one activation link visit.
func NewFlow(client *Client, accountID, secret string, navigator Navigator, notifier Notifier) *Flow {
	return &Flow{
		client:    client,
		gate:      NewTokenGate(client, accountID, secret),
		navigator: navigator,
		notifier:  notifier,
		accountID: accountID,
		secret:    secret,
		state:     StateAwaitingGate,
	}
}

// Gate returns the flow's token gate.
func (f *Flow) Gate() *TokenGate {
	return f.gate
}

// Resolve validates the activation link and unlocks or blocks the form. The
// underlying validation request is issued at most once per flow.
func (f *Flow) Resolve(ctx context.Context) GateResult {
	result := f.gate.Validate(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateAwaitingGate {
		if result.State == GateValid {
			f.state = StateReady
		} else {
			f.state = StateBlocked
		}
	}

	return result
}

// Touch marks the password field as touched, switching rule feedback from
// indeterminate to determinate.
func (f *Flow) Touch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = true
}

// SetCandidate updates the in-progress password. The first edit counts as a
// touch.
func (f *Flow) SetCandidate(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidate = value
	f.touched = true
}

// Candidate returns the in-progress password.
func (f *Flow) Candidate() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candidate
}

// Evaluation classifies the current candidate against the password policy.
func (f *Flow) Evaluation() Evaluation {
	f.mu.Lock()
	candidate, touched := f.candidate, f.touched
	f.mu.Unlock()
	return Evaluate(candidate, touched)
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Outcome returns the completion outcome, OutcomeNone until completed.
func (f *Flow) Outcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// FailureMessage returns the banner text of the last failed creation attempt.
func (f *Flow) FailureMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failureMessage
}

// CanSubmit reports whether the submit action is enabled: gate valid, policy
// satisfied, nothing in flight, and the flow not already completed.
func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateReady, StateSubmissionFailed:
	default:
		return false
	}

	return Evaluate(f.candidate, f.touched).AllPass
}

// Submit runs the two-step completion sequence: create the password, then
// attempt a transparent login.
//
// A creation failure returns ErrCreationFailed and leaves the flow retryable.
// A login failure is not an error: the flow completes with
// OutcomeAutoLoginFailed and routes to the manual login destination. After
// completion Submit is inert.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()

	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	if f.state == StateCompleted {
		f.mu.Unlock()
		return nil
	}
	if f.gate.Result().State != GateValid {
		f.mu.Unlock()
		return ErrGate
	}
	if !Evaluate(f.candidate, f.touched).AllPass {
		f.mu.Unlock()
		return ErrPolicyViolation
	}

	candidate := f.candidate
	created := f.created
	f.state = StateSubmitting
	f.failureMessage = ""
	f.mu.Unlock()

	if !created {
		if err := f.client.CreatePassword(ctx, f.accountID, f.secret, candidate); err != nil {
			message := creationMessageFromError(err)

			f.mu.Lock()
			f.state = StateSubmissionFailed
			f.failureMessage = message
			f.mu.Unlock()

			return fmt.Errorf("%w: %s", ErrCreationFailed, message)
		}

		// The invitation is consumed now. Even if login fails below, the
		// creation call must never be replayed.
		f.mu.Lock()
		f.created = true
		f.mu.Unlock()
	}

	gateUser := f.gate.Result().User

	loginUser, err := f.client.Login(ctx, gateUser.Username, candidate)
	if err != nil {
		f.complete(OutcomeAutoLoginFailed)
		f.navigator.ToManualLogin(gateUser.Username, MsgManualLogin)
		return nil
	}

	merged := mergeUsers(gateUser, *loginUser)
	f.complete(OutcomeAutoLoginSucceeded)

	if f.notifier != nil {
		f.notifier.Notify(MsgPasswordCreated, noticeDuration)
	}
	f.navigator.ToProfileCompletion(merged, MsgPasswordCreated)

	return nil
}

func (f *Flow) complete(outcome Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateCompleted
	f.outcome = outcome
}

// mergeUsers overlays the login profile on the gate profile. Login fields win
// on conflict, but zero-value login fields never clobber gate fields.
func mergeUsers(base, override User) User {
	if override.Username != "" {
		base.Username = override.Username
	}
	if override.FirstName != "" {
		base.FirstName = override.FirstName
	}
	if override.LastName != "" {
		base.LastName = override.LastName
	}
	if override.Email != "" {
		base.Email = override.Email
	}
	return base
}

// creationMessageFromError prefers the server-supplied message over the
// generic banner text.
func creationMessageFromError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgCreateFailed
}
