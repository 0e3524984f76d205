package handler

// Response is the envelope every JSON endpoint returns: Status is one
// of the two literals below, Data carries the payload on success, and
// Message carries the client-facing text on failure. The two never
// appear together.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// NewSuccessResponse wraps a payload in the success envelope.
func NewSuccessResponse(data interface{}) *Response {
	return &Response{Status: statusSuccess, Data: data}
}

// NewErrorResponse wraps a client-facing message in the error
// envelope. Internal error detail never belongs here; the error
// middleware logs the full chain separately.
func NewErrorResponse(message string) *Response {
	return &Response{Status: statusError, Message: message}
}
