package errors

const (
	HttpInternalError            = "internal_error"
	HttpInvalidJsonError         = "invalid_json"
	HttpInvalidEventError        = "invalid_event_type"
	HttpPayloadMismatchError     = "payload_mismatch"
	HttpMissingDeviceError       = "missing_device_id"
	HttpUnauthorizedError        = "unauthorized"
	HttpIdentityUnavailableError = "identity_unavailable"
	HttpNotFoundError            = "not_found"
)

// ErrorResponse is the error response body of every API endpoint.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
