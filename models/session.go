package models

type SessionPhase string

const (
	SessionPending         SessionPhase = "pending"
	SessionAuthenticated   SessionPhase = "authenticated"
	SessionUnauthenticated SessionPhase = "unauthenticated"
)

// Session is the admin console's view of the authentication provider's state.
// Phase starts at pending so views can hold a neutral loading state instead
// of flashing the login form while the initial check is in flight.
type Session struct {
	UID   string       `json:"uid,omitempty"`
	Email string       `json:"email,omitempty"`
	Phase SessionPhase `json:"phase"`
}

// Login is the admin sign-in request body.
type Login struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Credential is what the authentication provider hands back on a successful
// sign-in: the identity plus the bearer token admin calls present.
type Credential struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Token string `json:"token"`
}
