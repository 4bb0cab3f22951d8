package analysis

import "errors"

var (
	// ErrModelUnavailable covers transport failures, provider 5xx responses,
	// and timeouts talking to the model. Retried with backoff.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrMalformedOutput means the model replied but the reply failed strict
	// schema validation. Never retried; no partial assessment is produced.
	ErrMalformedOutput = errors.New("malformed model output")
	// ErrEmptyDocument means there is no text to analyze.
	ErrEmptyDocument = errors.New("empty document")
)
