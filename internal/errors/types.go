package errors

// standardized error response body
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "quota_exceeded")
	Message string `json:"message"`           // user-facing message
	Details string `json:"details,omitempty"` // sanitized in production
}

// quota denial body, carries the numbers the client needs to render the limit banner
type QuotaExceededResponse struct {
	ErrorResponse
	Usage  any `json:"usage,omitempty"`
	Limits any `json:"limits,omitempty"`
}

type ErrorInfo struct {
	category  string
	sanitized string
}
