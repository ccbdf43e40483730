package httpx

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const minExternalHTTPTimeout = 5 * time.Second

// externalHTTPClient is shared by the Anthropic and Slack clients so a single
// timeout setting covers every outbound call.
var externalHTTPClient = &http.Client{
	Timeout: defaultExternalHTTPTimeout,
}

func ExternalHTTPClient() *http.Client {
	return externalHTTPClient
}

// ConfigureExternalHTTPClient applies the configured timeout and returns the
// value actually used. Non-positive values fall back to the default; values
// below the floor are raised to it.
func ConfigureExternalHTTPClient(timeoutSeconds int) time.Duration {
	timeout := defaultExternalHTTPTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	if timeout < minExternalHTTPTimeout {
		timeout = minExternalHTTPTimeout
	}
	externalHTTPClient.Timeout = timeout
	return timeout
}
