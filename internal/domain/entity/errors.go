package entity

import "errors"

var (
	// ErrRequestFailed is a transient transport or non-2xx failure. The only kind worth retrying.
	ErrRequestFailed = errors.New("request failed")
	// ErrDecodingFailed means the upstream payload could not be decoded.
	ErrDecodingFailed = errors.New("decoding failed")
	// ErrInvalidCredentials means the API key is missing or was rejected (401/403).
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsTransient reports whether err is worth another attempt.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// UserMessage maps an error to the text shown to the user. Protocol details are never exposed.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "API key is missing or invalid. Set ALCHEMY_API_KEY environment variable."
	case errors.Is(err, ErrDecodingFailed):
		return "Failed to parse server response."
	default:
		return "Network request failed. Please try again."
	}
}
