package model

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Session is what a successful credential check hands back: the stored
// principal row minus its hash, the role tag the caller carries
// forward, and the signed identity token the HTTP layer threads scope
// from. Exactly one of Patient/Lab is set.
type Session struct {
	Token   string   `json:"token"`
	Role    string   `json:"role"`
	Patient *Patient `json:"patient,omitempty"`
	Lab     *Lab     `json:"lab,omitempty"`
}
