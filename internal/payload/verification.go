package payload

type SubmitCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResendCodeResponse struct {
	Envelope
	EmailSent bool `json:"email_sent"`
}

// NotVerifiedResponse is returned when login is blocked by verification
// state; the flag lets clients route to the verification screen without
// parsing the message.
type NotVerifiedResponse struct {
	Envelope
	NeedsVerification bool `json:"needs_verification"`
}
