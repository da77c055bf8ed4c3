package session

// State is the position of the identity lifecycle. Registering and
// Authenticating are transient: they exist only while one call is in
// flight, and the machine falls back to its pre-call state on failure.
type State string

const (
	StateAnonymous            State = "anonymous"
	StateRegistering          State = "registering"
	StateAwaitingVerification State = "awaiting_verification"
	StateAuthenticating       State = "authenticating"
	StateAuthenticated        State = "authenticated"
)
