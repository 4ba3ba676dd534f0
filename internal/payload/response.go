package payload

// Envelope is the common response shape. Endpoint responses embed it so the
// success flag and message sit at the top level of the JSON object next to
// the endpoint's own fields.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Successful(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

func Failed(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// ValidationErrorResponse carries the translated per-field messages for a
// rejected request body.
type ValidationErrorResponse struct {
	Envelope
	Errors []string `json:"errors,omitempty"`
}
