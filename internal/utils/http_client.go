package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// UserAgent is sent with every request of an [HTTPClient].
const UserAgent = "go-ics-sync"

// HTTPClient is a resty client bound to one server.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client that resolves relative request URLs
// against baseURL and gives up on a request after timeout. A zero timeout
// means no limit.
//
// Example usage:
//
//	client := utils.NewHTTPClient("http://localhost:8080", 30*time.Second)
//	resp, err := client.R().Get("/api/info")
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "application/json")
	return &HTTPClient{Client: c}
}
