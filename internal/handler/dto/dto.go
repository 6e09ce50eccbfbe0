// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
