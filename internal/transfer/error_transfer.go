package transfer

import "encoding/json"

// ErrorResponse covers the error envelopes the backend is known to emit.
type ErrorResponse struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
}
