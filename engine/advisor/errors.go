package advisor

import "errors"

var (
	// ErrMissingCredential means the analyzer has no endpoint or model configured,
	// or the endpoint rejected our credentials.
	ErrMissingCredential = errors.New("advisor: missing credential")
	// ErrQuotaExceeded means the daily analysis quota is used up, locally or
	// upstream.
	ErrQuotaExceeded = errors.New("advisor: quota exceeded")
	// ErrMalformedResponse means the collaborator answered outside the schema.
	ErrMalformedResponse = errors.New("advisor: malformed response")
	// ErrUnavailable covers transport failures, 5xx answers and an open circuit.
	ErrUnavailable = errors.New("advisor: unavailable")
)
