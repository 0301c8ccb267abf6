package dto

// ErrorResponse is the error envelope every handler returns.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
