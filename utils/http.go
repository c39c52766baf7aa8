package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound webhook calls.
var HTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}
