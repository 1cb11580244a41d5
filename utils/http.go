package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the workers talking to the profile service.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
