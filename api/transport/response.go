package transport

import "github.com/taskdeck/backend/domain"

// ErrorBody is the wire shape of every failure. The message is surfaced to
// the user verbatim by clients.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewError builds the error payload for a response.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

// Ack acknowledges a delete operation.
type Ack struct {
	Success bool `json:"success"`
}

// AuthResponse carries the bearer token and the signed-in user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
